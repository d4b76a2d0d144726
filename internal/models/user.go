package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleOperator   Role = "operator"
	RoleTeamLeader Role = "team_leader"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOperator, RoleTeamLeader, RoleAdmin:
		return true
	}
	return false
}

type AuthSource string

const (
	AuthSourceLocal    AuthSource = "local"
	AuthSourceExternal AuthSource = "external"
)

type User struct {
	ID               uint64     `gorm:"primarykey" json:"id"`
	Username         *string    `gorm:"type:varchar(50);uniqueIndex" json:"username"`
	Email            *string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	PasswordHash     string     `gorm:"type:varchar(255)" json:"-"`
	FirstName        string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName         string     `gorm:"type:varchar(100)" json:"last_name"`
	Role             Role       `gorm:"type:varchar(20);not null;default:'operator'" json:"role"`
	Enabled          bool       `gorm:"not null" json:"enabled"`
	AuthSource       AuthSource `gorm:"type:varchar(20);not null;default:'local'" json:"auth_source"`
	ExternalProvider string     `gorm:"type:varchar(50)" json:"-"`
	ExternalID       string     `gorm:"type:varchar(255);index" json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relations
	WorkHours []WorkHourEntry `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// DisplayName is "First Last", falling back to the email and then the username.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Email != nil && *u.Email != "" {
		return *u.Email
	}
	if u.Username != nil {
		return *u.Username
	}
	return ""
}
