package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minase/task-backend/internal/apierrors"
	"github.com/minase/task-backend/internal/dto"
	"github.com/minase/task-backend/internal/models"
	"github.com/minase/task-backend/internal/repository"
	"gorm.io/gorm"
)

// StatusHandler exposes the status rows backing the task-state enumeration.
// Any authenticated user can manage them; a status still referenced by tasks
// is protected from deletion.
type StatusHandler struct {
	statusRepo repository.StatusRepository
}

func NewStatusHandler(statusRepo repository.StatusRepository) *StatusHandler {
	return &StatusHandler{
		statusRepo: statusRepo,
	}
}

func (h *StatusHandler) ListStatuses(c *gin.Context) {
	statuses, err := h.statusRepo.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch statuses")
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusDTOs(statuses))
}

func (h *StatusHandler) GetStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	status, err := h.statusRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Status not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch status")
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusDTO(*status))
}

func (h *StatusHandler) CreateStatus(c *gin.Context) {
	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	status := &models.Status{Name: req.Name}
	if err := h.statusRepo.Create(status); err != nil {
		apierrors.InternalError(c, "Failed to create status")
		return
	}

	c.JSON(http.StatusCreated, dto.ToStatusDTO(*status))
}

// UpdateStatus serves both PUT and PATCH: the write shape is a single
// required field, so full and partial update coincide.
func (h *StatusHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	status, err := h.statusRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Status not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch status")
		return
	}

	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	status.Name = req.Name
	if err := h.statusRepo.Update(status); err != nil {
		apierrors.InternalError(c, "Failed to update status")
		return
	}

	c.JSON(http.StatusOK, dto.ToStatusDTO(*status))
}

func (h *StatusHandler) DeleteStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.statusRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Status not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch status")
		return
	}

	tasks, err := h.statusRepo.CountTasks(id)
	if err != nil {
		apierrors.InternalError(c, "Failed to check status references")
		return
	}
	if tasks > 0 {
		apierrors.Conflict(c, "Status is referenced by tasks")
		return
	}

	if err := h.statusRepo.Delete(id); err != nil {
		apierrors.InternalError(c, "Failed to delete status")
		return
	}

	c.Status(http.StatusNoContent)
}
