package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/minase/task-backend/internal/models"
)

// TagRef references a tag in a task write request. Clients send either a
// bare id or an embedded object, so both decode into the same value:
//
//	"tags": [1, 2]
//	"tags": [{"id": 1, "name": "urgent"}]
type TagRef struct {
	ID uint64
}

func (t *TagRef) UnmarshalJSON(data []byte) error {
	var id uint64
	if err := json.Unmarshal(data, &id); err == nil {
		t.ID = id
		return nil
	}

	var obj struct {
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("tag reference must be an id or an object with an id")
	}
	if obj.ID == 0 {
		return fmt.Errorf("tag reference must include a non-zero id")
	}
	t.ID = obj.ID
	return nil
}

// TaskRequest is the write shape for POST and PUT. AssignedUserIDs is
// write-only and optional; a nil pointer means the assignee list stays
// untouched, an empty slice means it is cleared.
type TaskRequest struct {
	Name            string     `json:"name" binding:"required,max=50"`
	Description     *string    `json:"description" binding:"omitempty,max=500"`
	IsCompleted     bool       `json:"is_completed"`
	Status          *uint64    `json:"status"`
	DueDate         *time.Time `json:"due_date"`
	SubTask         *uint64    `json:"sub_task"`
	TaskCategory    *uint64    `json:"task_category"`
	Tags            []TagRef   `json:"tags"`
	AssignedUserIDs *[]uint64  `json:"assigned_user_ids"`
}

// TagDTO represents a tag in API responses
type TagDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TaskAssignmentDTO is the read-only projection of an assignment record
type TaskAssignmentDTO struct {
	ID         uint64    `json:"id"`
	User       uint64    `json:"user"`
	AssignedAt time.Time `json:"assigned_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            uint64              `json:"id"`
	Name          string              `json:"name"`
	Description   *string             `json:"description"`
	IsCompleted   bool                `json:"is_completed"`
	Status        *uint64             `json:"status"`
	DueDate       *time.Time          `json:"due_date"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     *time.Time          `json:"updated_at"`
	SubTask       *uint64             `json:"sub_task"`
	TaskCategory  *uint64             `json:"task_category"`
	Tags          []TagDTO            `json:"tags"`
	AssignedUsers []TaskAssignmentDTO `json:"assigned_users"`
	CreatedBy     uint64              `json:"created_by"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}

// ToTagDTO converts a Tag model to TagDTO
func ToTagDTO(tag models.Tag) TagDTO {
	return TagDTO{
		ID:   tag.ID,
		Name: tag.Name,
	}
}

// ToTaskDTO converts a Task model to TaskDTO. Tags and Assignments must be
// preloaded for the nested projections to appear.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:           task.ID,
		Name:         task.Name,
		Description:  task.Description,
		IsCompleted:  task.IsCompleted,
		Status:       task.StatusID,
		DueDate:      task.DueDate,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
		SubTask:      task.ParentID,
		TaskCategory: task.CategoryID,
		CreatedBy:    task.CreatedByID,
	}

	dto.Tags = make([]TagDTO, len(task.Tags))
	for i, tag := range task.Tags {
		dto.Tags[i] = ToTagDTO(tag)
	}

	dto.AssignedUsers = make([]TaskAssignmentDTO, len(task.Assignments))
	for i, assignment := range task.Assignments {
		dto.AssignedUsers[i] = TaskAssignmentDTO{
			ID:         assignment.ID,
			User:       assignment.UserID,
			AssignedAt: assignment.AssignedAt,
		}
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}
