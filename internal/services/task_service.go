package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/minase/task-backend/internal/authz"
	"github.com/minase/task-backend/internal/models"
	"github.com/minase/task-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskEditForbidden    = errors.New("only the task creator or staff can modify this task")
	ErrTaskDeleteForbidden  = errors.New("only the task creator or staff can delete this task")
	ErrAssignmentForbidden  = errors.New("only staff users can assign tasks to other users")
	ErrTaskReferenced       = errors.New("task is referenced as a parent by other tasks")
	ErrStatusNotFound       = errors.New("status does not exist")
	ErrParentTaskNotFound   = errors.New("parent task does not exist")
	ErrTaskCategoryNotFound = errors.New("category does not exist")
	ErrTagNotFound          = errors.New("one or more tags do not exist")
	ErrTaskCycle            = errors.New("parent task reference would create a cycle")
)

// taskPreloads is the relation set every single-task response carries.
var taskPreloads = []string{"Tags", "Assignments"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo     repository.TaskRepository
	statusRepo   repository.StatusRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	userRepo     repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	statusRepo repository.StatusRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	userRepo repository.UserRepository,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		statusRepo:   statusRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		userRepo:     userRepo,
	}
}

// ListTasksInput carries the query-parameter filters for listing tasks
type ListTasksInput struct {
	Name         *string
	NameContains *string
	IsCompleted  *bool
	CreatedAtLT  *time.Time
	CreatedAtGT  *time.Time
	CreatedAt    *time.Time
	CreatedByID  *uint64
	Page         int
	PageSize     int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Name        string
	Description *string
	IsCompleted bool
	StatusID    *uint64
	DueDate     *time.Time
	ParentID    *uint64
	CategoryID  *uint64
	TagIDs      []uint64
	// AssigneeIDs is nil when the request did not mention assignees.
	AssigneeIDs *[]uint64
}

// UpdateTaskInput represents input for updating a task. Pointer fields are
// applied when non-nil; the Clear flags reset nullable fields explicitly so
// "set to null" and "not mentioned" stay distinguishable.
type UpdateTaskInput struct {
	Name             *string
	Description      *string
	ClearDescription bool
	IsCompleted      *bool
	StatusID         *uint64
	ClearStatus      bool
	DueDate          *time.Time
	ClearDueDate     bool
	ParentID         *uint64
	ClearParent      bool
	CategoryID       *uint64
	ClearCategory    bool
	TagIDs           *[]uint64
	AssigneeIDs      *[]uint64
}

// ListTasks returns tasks visible to the principal: everything for a
// superuser, otherwise only tasks the principal created or is assigned to.
func (s *TaskService) ListTasks(p authz.Principal, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		ViewerID:      p.ID,
		ViewerSeesAll: authz.CanViewAllTasks(p),
		Name:          input.Name,
		NameContains:  input.NameContains,
		IsCompleted:   input.IsCompleted,
		CreatedAtLT:   input.CreatedAtLT,
		CreatedAtGT:   input.CreatedAtGT,
		CreatedAt:     input.CreatedAt,
		CreatedByID:   input.CreatedByID,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task with its tags and assignments
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTask creates a task owned by the principal. When an assignee list is
// supplied the whole operation requires staff rights and runs in a single
// transaction, so a rejected assignment leaves no task behind.
func (s *TaskService) CreateTask(p authz.Principal, input CreateTaskInput) (*models.Task, error) {
	if input.AssigneeIDs != nil && !authz.CanAssignUsers(p) {
		return nil, ErrAssignmentForbidden
	}

	if err := s.validateStatus(input.StatusID); err != nil {
		return nil, err
	}
	if err := s.validateCategory(input.CategoryID); err != nil {
		return nil, err
	}
	if err := s.validateParent(0, input.ParentID); err != nil {
		return nil, err
	}
	tags, err := s.resolveTags(input.TagIDs)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Name:        input.Name,
		Description: input.Description,
		IsCompleted: input.IsCompleted,
		StatusID:    input.StatusID,
		DueDate:     input.DueDate,
		ParentID:    input.ParentID,
		CategoryID:  input.CategoryID,
		CreatedByID: p.ID,
		Tags:        tags,
	}

	var assignments []models.TaskAssignment
	if input.AssigneeIDs != nil {
		assignments, err = s.buildAssignments(p, *input.AssigneeIDs)
		if err != nil {
			return nil, err
		}
	}

	if err := s.taskRepo.Create(task, assignments); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateTask applies scalar changes and, when an assignee list is supplied,
// replaces the task's assignment set wholesale. An omitted assignee list
// leaves assignments untouched.
func (s *TaskService) UpdateTask(p authz.Principal, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !authz.CanModifyTask(p, task.CreatedByID) {
		return nil, ErrTaskEditForbidden
	}
	if input.AssigneeIDs != nil && !authz.CanAssignUsers(p) {
		return nil, ErrAssignmentForbidden
	}

	if input.StatusID != nil {
		if err := s.validateStatus(input.StatusID); err != nil {
			return nil, err
		}
	}
	if input.CategoryID != nil {
		if err := s.validateCategory(input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.ParentID != nil {
		if err := s.validateParent(taskID, input.ParentID); err != nil {
			return nil, err
		}
	}

	var tags []models.Tag
	if input.TagIDs != nil {
		tags, err = s.resolveTags(*input.TagIDs)
		if err != nil {
			return nil, err
		}
		if tags == nil {
			tags = []models.Tag{}
		}
	}

	if input.Name != nil {
		task.Name = *input.Name
	}
	if input.ClearDescription {
		task.Description = nil
	} else if input.Description != nil {
		task.Description = input.Description
	}
	if input.IsCompleted != nil {
		task.IsCompleted = *input.IsCompleted
	}
	if input.ClearStatus {
		task.StatusID = nil
	} else if input.StatusID != nil {
		task.StatusID = input.StatusID
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ClearParent {
		task.ParentID = nil
	} else if input.ParentID != nil {
		task.ParentID = input.ParentID
	}
	if input.ClearCategory {
		task.CategoryID = nil
	} else if input.CategoryID != nil {
		task.CategoryID = input.CategoryID
	}

	now := time.Now()
	task.UpdatedAt = &now

	if err := s.taskRepo.Update(task, tags); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if input.AssigneeIDs != nil {
		assignments, err := s.buildAssignments(p, *input.AssigneeIDs)
		if err != nil {
			return nil, err
		}
		if err := s.taskRepo.ReplaceAssignments(task.ID, assignments); err != nil {
			return nil, fmt.Errorf("failed to replace assignments: %w", err)
		}
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// DeleteTask deletes a task if the principal is its creator or staff.
// A task referenced as another task's parent is protected.
func (s *TaskService) DeleteTask(p authz.Principal, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !authz.CanDeleteTask(p, task.CreatedByID) {
		return ErrTaskDeleteForbidden
	}

	children, err := s.taskRepo.CountChildren(taskID)
	if err != nil {
		return fmt.Errorf("failed to check task references: %w", err)
	}
	if children > 0 {
		return ErrTaskReferenced
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// buildAssignments turns a raw assignee id list into assignment rows:
// de-duplicated, silently filtered to users that exist, and stamped with the
// assigning principal. Unknown ids are dropped rather than rejected.
func (s *TaskService) buildAssignments(p authz.Principal, userIDs []uint64) ([]models.TaskAssignment, error) {
	unique := uniqueUint64(userIDs)

	existing, err := s.userRepo.FilterExistingIDs(unique)
	if err != nil {
		return nil, fmt.Errorf("failed to verify assignees: %w", err)
	}

	now := time.Now()
	assignments := make([]models.TaskAssignment, len(existing))
	for i, userID := range existing {
		assignments[i] = models.TaskAssignment{
			UserID:      userID,
			AssignedAt:  now,
			CreatedByID: p.ID,
		}
	}
	return assignments, nil
}

// validateStatus rejects a status id that does not exist. Unlike assignee
// ids, a bad foreign key here fails the whole operation.
func (s *TaskService) validateStatus(statusID *uint64) error {
	if statusID == nil {
		return nil
	}
	if _, err := s.statusRepo.FindByID(*statusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStatusNotFound
		}
		return fmt.Errorf("failed to verify status: %w", err)
	}
	return nil
}

func (s *TaskService) validateCategory(categoryID *uint64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(*categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskCategoryNotFound
		}
		return fmt.Errorf("failed to verify category: %w", err)
	}
	return nil
}

// validateParent checks that the parent task exists and that adopting it
// would not create a cycle. Storage does not enforce acyclicity, so this
// walks the ancestor chain explicitly. taskID is zero for new tasks.
func (s *TaskService) validateParent(taskID uint64, parentID *uint64) error {
	if parentID == nil {
		return nil
	}
	if taskID != 0 && *parentID == taskID {
		return ErrTaskCycle
	}

	current := *parentID
	for {
		parent, err := s.taskRepo.FindByID(current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if current == *parentID {
					return ErrParentTaskNotFound
				}
				return nil
			}
			return fmt.Errorf("failed to walk parent chain: %w", err)
		}
		if parent.ParentID == nil {
			return nil
		}
		if taskID != 0 && *parent.ParentID == taskID {
			return ErrTaskCycle
		}
		current = *parent.ParentID
	}
}

// resolveTags loads the referenced tags and fails if any id is unknown.
func (s *TaskService) resolveTags(tagIDs []uint64) ([]models.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}

	unique := uniqueUint64(tagIDs)
	tags, err := s.tagRepo.FindByIDs(unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	if len(tags) != len(unique) {
		return nil, ErrTagNotFound
	}
	return tags, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
