package repository

import (
	"github.com/minase/task-backend/internal/models"
	"gorm.io/gorm"
)

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *GormCategoryRepository) FindByID(id uint64) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *GormCategoryRepository) List() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("id DESC").Find(&categories).Error
	return categories, err
}

func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Omit("Parent", "User", "Tasks").Save(category).Error
}

func (r *GormCategoryRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Category{}, id).Error
}

// CountChildren counts categories that reference the given one as parent
func (r *GormCategoryRepository) CountChildren(id uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Where("sub_category_id = ?", id).Count(&count).Error
	return count, err
}

// CountTasks counts tasks filed under the given category
func (r *GormCategoryRepository) CountTasks(id uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("task_category_id = ?", id).Count(&count).Error
	return count, err
}
