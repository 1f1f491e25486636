package repository

import (
	"time"

	"github.com/minase/task-backend/internal/models"
)

// TaskFilter holds the visibility scope and query-parameter filters for
// listing tasks. ViewerSeesAll bypasses the creator/assignee scope.
type TaskFilter struct {
	ViewerID      uint64
	ViewerSeesAll bool

	Name         *string
	NameContains *string
	IsCompleted  *bool
	CreatedAtLT  *time.Time
	CreatedAtGT  *time.Time
	CreatedAt    *time.Time
	CreatedByID  *uint64

	Page     int
	PageSize int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a task and its initial assignments in one transaction
	Create(task *models.Task, assignments []models.TaskAssignment) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks inside the filter's visibility scope, newest first
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update saves the task's scalar fields and, when tags is non-nil,
	// replaces the tag association
	Update(task *models.Task, tags []models.Tag) error

	// ReplaceAssignments deletes every assignment for the task and inserts
	// the given set inside a single transaction
	ReplaceAssignments(taskID uint64, assignments []models.TaskAssignment) error

	// Delete removes the task together with its assignments and tag links
	Delete(id uint64) error

	// CountChildren counts tasks that reference the given task as parent
	CountChildren(id uint64) (int64, error)
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(category *models.Category) error
	FindByID(id uint64) (*models.Category, error)
	List() ([]models.Category, error)
	Update(category *models.Category) error
	Delete(id uint64) error

	// CountChildren counts categories that reference the given one as parent
	CountChildren(id uint64) (int64, error)

	// CountTasks counts tasks filed under the given category
	CountTasks(id uint64) (int64, error)
}

// StatusRepository defines the interface for status data access
type StatusRepository interface {
	Create(status *models.Status) error
	FindByID(id uint64) (*models.Status, error)
	List() ([]models.Status, error)
	Update(status *models.Status) error
	Delete(id uint64) error

	// CountTasks counts tasks currently in the given status
	CountTasks(id uint64) (int64, error)
}

// TagRepository defines the interface for tag data access
type TagRepository interface {
	Create(tag *models.Tag) error
	FindByID(id uint64) (*models.Tag, error)
	FindByIDs(ids []uint64) ([]models.Tag, error)
	List() ([]models.Tag, error)
	Update(tag *models.Tag) error
	Delete(id uint64) error
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(group *models.Group) error
	FindByID(id uint64) (*models.Group, error)
	FindByName(name string) (*models.Group, error)
	FindByIDs(ids []uint64) ([]models.Group, error)
	List() ([]models.Group, error)
	Update(group *models.Group) error
	Delete(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint64, preload ...string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	List() ([]models.User, error)
	Update(user *models.User) error

	// ReplaceGroups rewrites the user's group memberships
	ReplaceGroups(user *models.User, groups []models.Group) error

	Delete(id uint64) error

	// CountCreatedTasks counts tasks created by the given user
	CountCreatedTasks(id uint64) (int64, error)

	// CountCreatedAssignments counts assignments the user authored for other
	// users
	CountCreatedAssignments(id uint64) (int64, error)

	// CountCategories counts categories owned by the given user
	CountCategories(id uint64) (int64, error)

	// FilterExistingIDs returns the subset of the given user IDs that exist,
	// preserving input order
	FilterExistingIDs(ids []uint64) ([]uint64, error)
}
