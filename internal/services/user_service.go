package services

import (
	"fmt"

	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/policy"
	"github.com/yukikurage/ndt-worklog/internal/repository"
)

// UserService handles user administration.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List lists users, optionally restricted to one role.
func (s *UserService) List(actor policy.Actor, role *models.Role) ([]models.User, error) {
	if !policy.Authorize(actor, policy.ListUsers, nil) {
		return nil, ErrForbidden
	}
	if role != nil && !role.Valid() {
		return nil, invalidField("role", "must be one of operator, team_leader, admin")
	}

	users, err := s.userRepo.List(role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Create creates a local account with any role. Admin only.
func (s *UserService) Create(actor policy.Actor, input RegisterInput) (*models.User, error) {
	if !policy.Authorize(actor, policy.ManageUsers, nil) {
		return nil, ErrForbidden
	}
	if input.Role == "" {
		input.Role = models.RoleOperator
	}
	return createLocalUser(s.userRepo, input)
}

// UpdateRole changes a user's role. Admin only.
func (s *UserService) UpdateRole(actor policy.Actor, id uint64, role models.Role) (*models.User, error) {
	if !policy.Authorize(actor, policy.ManageUsers, &policy.Target{OwnerID: id}) {
		return nil, ErrForbidden
	}
	if !role.Valid() {
		return nil, invalidField("role", "must be one of operator, team_leader, admin")
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "find user")
	}

	user.Role = role
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return user, nil
}

// SetEnabled enables or disables an account. Nobody may toggle their own.
func (s *UserService) SetEnabled(actor policy.Actor, id uint64, enabled bool) (*models.User, error) {
	if id == actor.ID && policy.IsSelfGuarded(policy.ToggleUserStatus) {
		return nil, ErrSelfTarget
	}
	if !policy.Authorize(actor, policy.ToggleUserStatus, &policy.Target{OwnerID: id}) {
		return nil, ErrForbidden
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "find user")
	}

	user.Enabled = enabled
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	return user, nil
}

// Delete removes a user and their work-hour entries. Nobody may delete
// their own account.
func (s *UserService) Delete(actor policy.Actor, id uint64) error {
	if id == actor.ID && policy.IsSelfGuarded(policy.DeleteUser) {
		return ErrSelfTarget
	}
	if !policy.Authorize(actor, policy.DeleteUser, &policy.Target{OwnerID: id}) {
		return ErrForbidden
	}

	if err := s.userRepo.Delete(id); err != nil {
		return notFound(err, ErrUserNotFound, "delete user")
	}
	return nil
}
