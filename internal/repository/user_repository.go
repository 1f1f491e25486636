package repository

import (
	"github.com/minase/task-backend/internal/models"
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

func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *GormUserRepository) FindByID(id uint64, preload ...string) (*models.User, error) {
	var user models.User
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns users ordered by join date, newest first
func (r *GormUserRepository) List() ([]models.User, error) {
	var users []models.User
	err := r.db.Preload("Groups").Order("date_joined DESC").Find(&users).Error
	return users, err
}

func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Omit("Groups", "CreatedTasks", "Assignments").Save(user).Error
}

// ReplaceGroups rewrites the user's group memberships
func (r *GormUserRepository) ReplaceGroups(user *models.User, groups []models.Group) error {
	return r.db.Model(user).Association("Groups").Replace(groups)
}

func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{ID: id}).Association("Groups").Clear(); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}

// CountCreatedTasks counts tasks created by the given user
func (r *GormUserRepository) CountCreatedTasks(id uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("created_by_id = ?", id).Count(&count).Error
	return count, err
}

// CountCreatedAssignments counts assignments the user authored for other
// users. Rows assigning the user themselves are excluded; those cascade with
// the account.
func (r *GormUserRepository) CountCreatedAssignments(id uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskAssignment{}).
		Where("created_by_id = ? AND user_id <> ?", id, id).
		Count(&count).Error
	return count, err
}

// CountCategories counts categories owned by the given user
func (r *GormUserRepository) CountCategories(id uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Where("user_id = ?", id).Count(&count).Error
	return count, err
}

// FilterExistingIDs returns the subset of the given user IDs that exist,
// preserving input order
func (r *GormUserRepository) FilterExistingIDs(ids []uint64) ([]uint64, error) {
	if len(ids) == 0 {
		return []uint64{}, nil
	}

	var existing []uint64
	if err := r.db.Model(&models.User{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return nil, err
	}

	found := make(map[uint64]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}

	result := make([]uint64, 0, len(existing))
	for _, id := range ids {
		if _, ok := found[id]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}
