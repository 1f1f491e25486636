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

// GroupHandler manages named user collections. Membership is assigned per
// user through the admin user resource; this one only covers the group
// records themselves. Deleting a group detaches its members.
type GroupHandler struct {
	groupRepo repository.GroupRepository
}

func NewGroupHandler(groupRepo repository.GroupRepository) *GroupHandler {
	return &GroupHandler{
		groupRepo: groupRepo,
	}
}

// ListGroups returns all groups ordered alphabetically by name
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupRepo.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch groups")
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTOs(groups))
}

func (h *GroupHandler) GetGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	group, err := h.groupRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Group not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch group")
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*group))
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if !h.checkNameAvailable(c, req.Name) {
		return
	}

	group := &models.Group{Name: req.Name}
	if err := h.groupRepo.Create(group); err != nil {
		apierrors.InternalError(c, "Failed to create group")
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupDTO(*group))
}

// UpdateGroup serves both PUT and PATCH
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	group, err := h.groupRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Group not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch group")
		return
	}

	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if req.Name != group.Name && !h.checkNameAvailable(c, req.Name) {
		return
	}

	group.Name = req.Name
	if err := h.groupRepo.Update(group); err != nil {
		apierrors.InternalError(c, "Failed to update group")
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*group))
}

// checkNameAvailable answers the uniqueness violation as 409 instead of
// letting the unique index surface as a 500. Writes the error response and
// returns false when the name is taken.
func (h *GroupHandler) checkNameAvailable(c *gin.Context, name string) bool {
	if _, err := h.groupRepo.FindByName(name); err == nil {
		apierrors.Conflict(c, "Group name already exists")
		return false
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		apierrors.InternalError(c, "Failed to check group name")
		return false
	}
	return true
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.groupRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Group not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch group")
		return
	}

	if err := h.groupRepo.Delete(id); err != nil {
		apierrors.InternalError(c, "Failed to delete group")
		return
	}

	c.Status(http.StatusNoContent)
}
