package repository

import (
	"github.com/yukikurage/ndt-worklog/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByExternalID finds a user linked to an external identity
func (r *GormUserRepository) FindByExternalID(provider, externalID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("external_provider = ? AND external_id = ?", provider, externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List lists users ordered by name
func (r *GormUserRepository) List(role *models.Role) ([]models.User, error) {
	var users []models.User
	query := r.db.Model(&models.User{})
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	if err := query.Order("last_name ASC, first_name ASC, id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListEnabled lists users whose accounts are enabled
func (r *GormUserRepository) ListEnabled() ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("enabled = ?", true).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Count counts users, optionally restricted to one role
func (r *GormUserRepository) Count(role *models.Role) (int64, error) {
	var count int64
	query := r.db.Model(&models.User{})
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	err := query.Count(&count).Error
	return count, err
}

// Update saves every field of the user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete removes the user's entries and qualifications, detaches equipment and
// approvals, then deletes the user, all in one transaction.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.WorkHourEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("operator_id = ?", id).Delete(&models.Qualification{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Equipment{}).Where("assigned_operator_id = ?", id).
			Update("assigned_operator_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Procedure{}).Where("approved_by_id = ?", id).
			Update("approved_by_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
