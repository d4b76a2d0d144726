// Package policy decides which roles may perform which actions, on their own
// records and on everybody else's.
package policy

import "github.com/yukikurage/ndt-worklog/internal/models"

type Action string

const (
	ReadHours                Action = "hours:read"
	EditHours                Action = "hours:edit"
	DeleteHours              Action = "hours:delete"
	ExportHours              Action = "hours:export"
	ViewTeamStats            Action = "stats:team"
	ListUsers                Action = "users:list"
	ManageUsers              Action = "users:manage"
	ToggleUserStatus         Action = "users:toggle"
	DeleteUser               Action = "users:delete"
	ManageJobOrders          Action = "job_orders:manage"
	ManageEquipment          Action = "equipment:manage"
	DeleteEquipment          Action = "equipment:delete"
	ReadAllEquipment         Action = "equipment:read_all"
	ManageProcedures         Action = "procedures:manage"
	DeleteProcedures         Action = "procedures:delete"
	ViewSupersededProcedures Action = "procedures:superseded"
	ManageQualifications     Action = "qualifications:manage"
	ReadQualifications       Action = "qualifications:read"
	ManageSettings           Action = "settings:manage"
)

// Actor is the authenticated user performing an action.
type Actor struct {
	ID   uint64
	Role models.Role
}

// Target identifies the owner of the record being acted upon.
type Target struct {
	OwnerID uint64
}

type rule struct {
	own    []models.Role
	others []models.Role
	// selfGuarded actions can never be applied to the actor's own account.
	selfGuarded bool
}

var (
	everyone = []models.Role{models.RoleOperator, models.RoleTeamLeader, models.RoleAdmin}
	leaders  = []models.Role{models.RoleTeamLeader, models.RoleAdmin}
	admins   = []models.Role{models.RoleAdmin}
)

var rules = map[Action]rule{
	ReadHours:                {own: everyone, others: leaders},
	EditHours:                {own: everyone, others: leaders},
	DeleteHours:              {own: everyone, others: admins},
	ExportHours:              {own: everyone, others: leaders},
	ViewTeamStats:            {others: leaders},
	ListUsers:                {others: leaders},
	ManageUsers:              {others: admins},
	ToggleUserStatus:         {others: leaders, selfGuarded: true},
	DeleteUser:               {others: admins, selfGuarded: true},
	ManageJobOrders:          {others: admins},
	ManageEquipment:          {others: leaders},
	DeleteEquipment:          {others: admins},
	ReadAllEquipment:         {others: leaders},
	ManageProcedures:         {others: leaders},
	DeleteProcedures:         {others: admins},
	ViewSupersededProcedures: {others: leaders},
	ManageQualifications:     {others: admins},
	ReadQualifications:       {own: everyone, others: leaders},
	ManageSettings:           {others: admins},
}

// Authorize reports whether actor may perform action on target. A nil target
// means the action applies to the whole collection and uses the others' column.
// Unknown actions and roles are denied.
func Authorize(actor Actor, action Action, target *Target) bool {
	r, ok := rules[action]
	if !ok || !actor.Role.Valid() {
		return false
	}
	if target != nil && target.OwnerID == actor.ID {
		if r.selfGuarded {
			return false
		}
		if contains(r.own, actor.Role) {
			return true
		}
	}
	return contains(r.others, actor.Role)
}

// IsSelfGuarded reports whether action may never target the actor's own account.
func IsSelfGuarded(action Action) bool {
	return rules[action].selfGuarded
}

// CanActOnOthers reports whether the role holds action over records owned by
// anybody, which is how listings decide between scoping and filtering.
func CanActOnOthers(role models.Role, action Action) bool {
	return contains(rules[action].others, role)
}

func contains(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
