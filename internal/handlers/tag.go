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

// TagHandler manages the freely reusable task labels. Deleting a tag simply
// detaches it from every task.
type TagHandler struct {
	tagRepo repository.TagRepository
}

func NewTagHandler(tagRepo repository.TagRepository) *TagHandler {
	return &TagHandler{
		tagRepo: tagRepo,
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tagRepo.List()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tags")
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTOs(tags))
}

func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	tag, err := h.tagRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Tag not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch tag")
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTO(*tag))
}

func (h *TagHandler) CreateTag(c *gin.Context) {
	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag := &models.Tag{Name: req.Name}
	if err := h.tagRepo.Create(tag); err != nil {
		apierrors.InternalError(c, "Failed to create tag")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTagDTO(*tag))
}

// UpdateTag serves both PUT and PATCH
func (h *TagHandler) UpdateTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	tag, err := h.tagRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Tag not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch tag")
		return
	}

	var req dto.NamedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	tag.Name = req.Name
	if err := h.tagRepo.Update(tag); err != nil {
		apierrors.InternalError(c, "Failed to update tag")
		return
	}

	c.JSON(http.StatusOK, dto.ToTagDTO(*tag))
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.tagRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Tag not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch tag")
		return
	}

	if err := h.tagRepo.Delete(id); err != nil {
		apierrors.InternalError(c, "Failed to delete tag")
		return
	}

	c.Status(http.StatusNoContent)
}
