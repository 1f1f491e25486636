package repository

import (
	"github.com/minase/task-backend/internal/models"
	"gorm.io/gorm"
)

// GormGroupRepository is a GORM implementation of GroupRepository
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &GormGroupRepository{db: db}
}

func (r *GormGroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

func (r *GormGroupRepository) FindByID(id uint64) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GormGroupRepository) FindByName(name string) (*models.Group, error) {
	var group models.Group
	if err := r.db.Where("name = ?", name).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GormGroupRepository) FindByIDs(ids []uint64) ([]models.Group, error) {
	var groups []models.Group
	if len(ids) == 0 {
		return groups, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&groups).Error
	return groups, err
}

// List returns groups ordered alphabetically by name
func (r *GormGroupRepository) List() ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Order("name ASC").Find(&groups).Error
	return groups, err
}

func (r *GormGroupRepository) Update(group *models.Group) error {
	return r.db.Omit("Users").Save(group).Error
}

func (r *GormGroupRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Group{ID: id}).Association("Users").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, id).Error
	})
}
