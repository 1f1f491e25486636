package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minase/task-backend/internal/apierrors"
	"github.com/minase/task-backend/internal/constants"
	"github.com/minase/task-backend/internal/dto"
	"github.com/minase/task-backend/internal/middleware"
	"github.com/minase/task-backend/internal/services"
	"github.com/minase/task-backend/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user, newest first.
// Supports the filters name, name__contains, is_completed, created_at__lt,
// created_at__gt, created_at and created_by.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input, err := parseTaskListQuery(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(p, *input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a task already loaded and visibility-checked by
// RequireTaskVisible.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetContextTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask creates a new task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	p, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(p, services.CreateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		StatusID:    req.Status,
		DueDate:     req.DueDate,
		ParentID:    req.SubTask,
		CategoryID:  req.TaskCategory,
		TagIDs:      tagRefIDs(req.Tags),
		AssigneeIDs: req.AssignedUserIDs,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask is the full-update handler (PUT): optional fields omitted from
// the body are cleared. An omitted assigned_user_ids still leaves the
// assignment set untouched; it is write-only and replacement-only.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	p, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, ok := middleware.GetContextTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tagIDs := tagRefIDs(req.Tags)
	if tagIDs == nil {
		tagIDs = []uint64{}
	}
	isCompleted := req.IsCompleted

	input := services.UpdateTaskInput{
		Name:             &req.Name,
		Description:      req.Description,
		ClearDescription: req.Description == nil,
		IsCompleted:      &isCompleted,
		StatusID:         req.Status,
		ClearStatus:      req.Status == nil,
		DueDate:          req.DueDate,
		ClearDueDate:     req.DueDate == nil,
		ParentID:         req.SubTask,
		ClearParent:      req.SubTask == nil,
		CategoryID:       req.TaskCategory,
		ClearCategory:    req.TaskCategory == nil,
		TagIDs:           &tagIDs,
		AssigneeIDs:      req.AssignedUserIDs,
	}

	updated, err := h.taskService.UpdateTask(p, task.ID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// PatchTask is the partial-update handler: only keys present in the body are
// applied, and an explicit null clears a nullable field.
func (h *TaskHandler) PatchTask(c *gin.Context) {
	p, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, ok := middleware.GetContextTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := buildPatchInput(rawReq)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	updated, err := h.taskService.UpdateTask(p, task.ID, *input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	p, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, ok := middleware.GetContextTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(p, task.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAssignmentForbidden),
		errors.Is(err, services.ErrTaskEditForbidden),
		errors.Is(err, services.ErrTaskDeleteForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrStatusNotFound),
		errors.Is(err, services.ErrParentTaskNotFound),
		errors.Is(err, services.ErrTaskCategoryNotFound),
		errors.Is(err, services.ErrTagNotFound),
		errors.Is(err, services.ErrTaskCycle):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskReferenced):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

func tagRefIDs(refs []dto.TagRef) []uint64 {
	if refs == nil {
		return nil
	}
	ids := make([]uint64, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	return ids
}

func parseTaskListQuery(c *gin.Context) (*services.ListTasksInput, error) {
	input := &services.ListTasksInput{}

	if v := c.Query("name"); v != "" {
		name := v
		input.Name = &name
	}
	if v := c.Query("name__contains"); v != "" {
		contains := v
		input.NameContains = &contains
	}
	if v := c.Query("is_completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid is_completed value")
		}
		input.IsCompleted = &completed
	}
	if v := c.Query("created_by"); v != "" {
		createdBy, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid created_by value")
		}
		input.CreatedByID = &createdBy
	}

	var err error
	if input.CreatedAtLT, err = parseTimeQuery(c, "created_at__lt"); err != nil {
		return nil, err
	}
	if input.CreatedAtGT, err = parseTimeQuery(c, "created_at__gt"); err != nil {
		return nil, err
	}
	if input.CreatedAt, err = parseTimeQuery(c, "created_at"); err != nil {
		return nil, err
	}

	return input, nil
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value, expected RFC 3339 timestamp", key)
	}
	return &parsed, nil
}

// buildPatchInput maps a raw JSON object onto UpdateTaskInput, tracking
// which keys were present so absent and null stay distinct.
func buildPatchInput(raw map[string]any) (*services.UpdateTaskInput, error) {
	input := &services.UpdateTaskInput{}

	if v, ok := raw["name"]; ok {
		name, ok := v.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("name must be a non-empty string")
		}
		if len(name) > constants.MaxNameLength {
			return nil, fmt.Errorf("name must be at most %d characters", constants.MaxNameLength)
		}
		input.Name = &name
	}

	if v, ok := raw["description"]; ok {
		if v == nil {
			input.ClearDescription = true
		} else {
			description, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("description must be a string")
			}
			if len(description) > constants.MaxDescriptionLength {
				return nil, fmt.Errorf("description must be at most %d characters", constants.MaxDescriptionLength)
			}
			input.Description = &description
		}
	}

	if v, ok := raw["is_completed"]; ok {
		completed, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("is_completed must be a boolean")
		}
		input.IsCompleted = &completed
	}

	var err error
	if input.StatusID, input.ClearStatus, err = patchID(raw, "status"); err != nil {
		return nil, err
	}
	if input.ParentID, input.ClearParent, err = patchID(raw, "sub_task"); err != nil {
		return nil, err
	}
	if input.CategoryID, input.ClearCategory, err = patchID(raw, "task_category"); err != nil {
		return nil, err
	}

	if v, ok := raw["due_date"]; ok {
		if v == nil {
			input.ClearDueDate = true
		} else {
			dueDateStr, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("due_date must be an RFC 3339 timestamp")
			}
			parsed, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				return nil, fmt.Errorf("due_date must be an RFC 3339 timestamp")
			}
			input.DueDate = &parsed
		}
	}

	if v, ok := raw["tags"]; ok {
		tagIDs, err := patchIDList(v, "tags")
		if err != nil {
			return nil, err
		}
		input.TagIDs = &tagIDs
	}

	if v, ok := raw["assigned_user_ids"]; ok {
		userIDs, err := patchIDList(v, "assigned_user_ids")
		if err != nil {
			return nil, err
		}
		input.AssigneeIDs = &userIDs
	}

	return input, nil
}

func patchID(raw map[string]any, key string) (*uint64, bool, error) {
	v, ok := raw[key]
	if !ok {
		return nil, false, nil
	}
	if v == nil {
		return nil, true, nil
	}
	num, ok := v.(float64)
	if !ok || num < 0 || num != float64(uint64(num)) {
		return nil, false, fmt.Errorf("%s must be an id", key)
	}
	id := uint64(num)
	return &id, false, nil
}

// patchIDList accepts bare ids or embedded objects with an id field, the two
// shapes clients send for tag lists.
func patchIDList(v any, key string) ([]uint64, error) {
	if v == nil {
		return []uint64{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list", key)
	}

	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		switch value := item.(type) {
		case float64:
			if value < 0 || value != float64(uint64(value)) {
				return nil, fmt.Errorf("%s must contain ids", key)
			}
			ids = append(ids, uint64(value))
		case map[string]any:
			num, ok := value["id"].(float64)
			if !ok || num <= 0 {
				return nil, fmt.Errorf("%s entries must include an id", key)
			}
			ids = append(ids, uint64(num))
		default:
			return nil, fmt.Errorf("%s must contain ids", key)
		}
	}
	return ids, nil
}
