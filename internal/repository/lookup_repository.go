package repository

import (
	"github.com/minase/task-backend/internal/models"
	"gorm.io/gorm"
)

// GormStatusRepository is a GORM implementation of StatusRepository
type GormStatusRepository struct {
	db *gorm.DB
}

// NewStatusRepository creates a new StatusRepository
func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &GormStatusRepository{db: db}
}

func (r *GormStatusRepository) Create(status *models.Status) error {
	return r.db.Create(status).Error
}

func (r *GormStatusRepository) FindByID(id uint64) (*models.Status, error) {
	var status models.Status
	if err := r.db.First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *GormStatusRepository) List() ([]models.Status, error) {
	var statuses []models.Status
	err := r.db.Order("id DESC").Find(&statuses).Error
	return statuses, err
}

func (r *GormStatusRepository) Update(status *models.Status) error {
	return r.db.Omit("Tasks").Save(status).Error
}

func (r *GormStatusRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Status{}, id).Error
}

// CountTasks counts tasks currently in the given status
func (r *GormStatusRepository) CountTasks(id uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("status_id = ?", id).Count(&count).Error
	return count, err
}

// GormTagRepository is a GORM implementation of TagRepository
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

func (r *GormTagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

func (r *GormTagRepository) FindByID(id uint64) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.First(&tag, id).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *GormTagRepository) FindByIDs(ids []uint64) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&tags).Error
	return tags, err
}

func (r *GormTagRepository) List() ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Order("id DESC").Find(&tags).Error
	return tags, err
}

func (r *GormTagRepository) Update(tag *models.Tag) error {
	return r.db.Omit("Tasks").Save(tag).Error
}

// Delete removes the tag and detaches it from every task. Tags are freely
// reusable labels, so this is not a protected reference.
func (r *GormTagRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Tag{ID: id}).Association("Tasks").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
}
