package repository

import (
	"strings"

	"github.com/minase/task-backend/internal/database"
	"github.com/minase/task-backend/internal/models"
	"github.com/minase/task-backend/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a task and its initial assignments in one transaction.
// A failure at any point leaves no partial write behind.
func (r *GormTaskRepository) Create(task *models.Task, assignments []models.TaskAssignment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		if len(assignments) == 0 {
			return nil
		}

		for i := range assignments {
			assignments[i].TaskID = task.ID
		}
		return tx.Create(&assignments).Error
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks inside the filter's visibility scope, newest first
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if !filter.ViewerSeesAll {
		assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
			Select("1").
			Where("task_assignments.task_id = tasks.id").
			Where("task_assignments.user_id = ?", filter.ViewerID)
		query = query.Where("tasks.created_by_id = ? OR EXISTS (?)", filter.ViewerID, assignmentSubQuery)
	}

	if filter.Name != nil {
		query = query.Where("tasks.name = ?", *filter.Name)
	}
	if filter.NameContains != nil {
		// LOWER on both sides keeps the match case-insensitive on every
		// driver; plain LIKE is case-sensitive under Postgres
		pattern := "%" + strings.ToLower(*filter.NameContains) + "%"
		query = query.Where("LOWER(tasks.name) LIKE ?", pattern)
	}
	if filter.IsCompleted != nil {
		query = query.Where("tasks.is_completed = ?", *filter.IsCompleted)
	}
	if filter.CreatedAtLT != nil {
		query = query.Where("tasks.created_at < ?", *filter.CreatedAtLT)
	}
	if filter.CreatedAtGT != nil {
		query = query.Where("tasks.created_at > ?", *filter.CreatedAtGT)
	}
	if filter.CreatedAt != nil {
		query = query.Where("tasks.created_at = ?", *filter.CreatedAt)
	}
	if filter.CreatedByID != nil {
		query = query.Where("tasks.created_by_id = ?", *filter.CreatedByID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.id DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Preload("Tags").Preload("Assignments").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update saves the task's scalar fields and, when tags is non-nil, replaces
// the tag association
func (r *GormTaskRepository) Update(task *models.Task, tags []models.Tag) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Assignments", "CreatedBy").Save(task).Error; err != nil {
			return err
		}

		if tags == nil {
			return nil
		}
		return tx.Model(task).Association("Tags").Replace(tags)
	})
}

// ReplaceAssignments deletes every assignment for the task and inserts the
// given set inside a single transaction, so concurrent readers never observe
// the intermediate empty state.
func (r *GormTaskRepository) ReplaceAssignments(taskID uint64, assignments []models.TaskAssignment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if len(assignments) == 0 {
			return nil
		}

		for i := range assignments {
			assignments[i].TaskID = taskID
		}
		return tx.Create(&assignments).Error
	})
}

// Delete removes the task together with its assignments and tag links
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{ID: id}).Association("Tags").Clear(); err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// CountChildren counts tasks that reference the given task as parent
func (r *GormTaskRepository) CountChildren(id uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("sub_task_id = ?", id).Count(&count).Error
	return count, err
}
