package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"github.com/yukikurage/ndt-worklog/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, log zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		log:      log,
	}
}

// RegisterInput represents the information needed to create a local account.
type RegisterInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Role      models.Role
}

// Register creates a local operator account.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	input.Role = models.RoleOperator
	return createLocalUser(s.userRepo, input)
}

// createLocalUser validates input, checks uniqueness and stores a bcrypt hash.
func createLocalUser(repo repository.UserRepository, input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	var v fieldChecks
	v.check(len(username) >= constants.MinUsernameLength && len(username) <= constants.MaxUsernameLength,
		"username", fmt.Sprintf("must be between %d and %d characters", constants.MinUsernameLength, constants.MaxUsernameLength))
	v.check(len(input.Password) >= constants.MinPasswordLength,
		"password", fmt.Sprintf("must be at least %d characters", constants.MinPasswordLength))
	v.check(email == "" || validate.Var(email, "email") == nil, "email", "must be a valid email address")
	v.check(input.Role.Valid(), "role", "must be one of operator, team_leader, admin")
	if err := v.err(); err != nil {
		return nil, err
	}

	if _, err := repo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if email != "" {
		if _, err := repo.FindByEmail(email); err == nil {
			return nil, ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     &username,
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         input.Role,
		Enabled:      true,
		AuthSource:   models.AuthSourceLocal,
	}
	if email != "" {
		user.Email = &email
	}

	if err := repo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user. The username
// may also be the account's email address.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	identifier := strings.TrimSpace(input.Username)

	user, err := s.userRepo.FindByUsername(identifier)
	if errors.Is(err, gorm.ErrRecordNotFound) && strings.Contains(identifier, "@") {
		user, err = s.userRepo.FindByEmail(identifier)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		return nil, ErrAccountDisabled
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "find user")
	}

	return user, nil
}

// ExternalIdentity is the profile returned by an external identity provider.
type ExternalIdentity struct {
	Provider   string
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
}

// UpsertExternalUser finds the account linked to identity, links an existing
// account with the same email, or creates a new operator.
func (s *AuthService) UpsertExternalUser(identity ExternalIdentity) (*models.User, error) {
	if identity.Provider == "" || identity.ExternalID == "" {
		return nil, invalidField("external_id", "is required")
	}

	user, err := s.userRepo.FindByExternalID(identity.Provider, identity.ExternalID)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = s.linkOrCreateExternal(identity)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to find external user: %w", err)
	}

	if !user.Enabled {
		return nil, ErrAccountDisabled
	}

	changed := false
	if identity.FirstName != "" && user.FirstName != identity.FirstName {
		user.FirstName = identity.FirstName
		changed = true
	}
	if identity.LastName != "" && user.LastName != identity.LastName {
		user.LastName = identity.LastName
		changed = true
	}
	if changed {
		if err := s.userRepo.Update(user); err != nil {
			return nil, fmt.Errorf("failed to update external user: %w", err)
		}
	}

	return user, nil
}

func (s *AuthService) linkOrCreateExternal(identity ExternalIdentity) (*models.User, error) {
	email := strings.TrimSpace(identity.Email)
	if email != "" {
		user, err := s.userRepo.FindByEmail(email)
		if err == nil {
			user.ExternalProvider = identity.Provider
			user.ExternalID = identity.ExternalID
			if err := s.userRepo.Update(user); err != nil {
				return nil, fmt.Errorf("failed to link external identity: %w", err)
			}
			s.log.Info().Uint64("user_id", user.ID).Str("provider", identity.Provider).Msg("Linked external identity to existing account")
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}

	user := &models.User{
		FirstName:        identity.FirstName,
		LastName:         identity.LastName,
		Role:             models.RoleOperator,
		Enabled:          true,
		AuthSource:       models.AuthSourceExternal,
		ExternalProvider: identity.Provider,
		ExternalID:       identity.ExternalID,
	}
	if email != "" {
		user.Email = &email
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create external user: %w", err)
	}
	s.log.Info().Uint64("user_id", user.ID).Str("provider", identity.Provider).Msg("Created account for external identity")
	return user, nil
}

// EnsureAdmin creates an admin account with a generated password when no
// admin exists yet. It returns the password only when an account was created.
func (s *AuthService) EnsureAdmin(username string) (string, error) {
	admin := models.RoleAdmin
	count, err := s.userRepo.Count(&admin)
	if err != nil {
		return "", fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 || username == "" {
		return "", nil
	}

	password, err := utils.GenerateTemporaryPassword()
	if err != nil {
		return "", err
	}
	if _, err := createLocalUser(s.userRepo, RegisterInput{
		Username: username,
		Password: password,
		Role:     models.RoleAdmin,
	}); err != nil {
		return "", err
	}
	return password, nil
}
