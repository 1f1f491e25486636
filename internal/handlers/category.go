package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/minase/task-backend/internal/apierrors"
	"github.com/minase/task-backend/internal/constants"
	"github.com/minase/task-backend/internal/dto"
	"github.com/minase/task-backend/internal/middleware"
	"github.com/minase/task-backend/internal/services"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// ListCategories returns all categories, newest first
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch categories")
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTOs(categories))
}

// GetCategory returns a single category
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(id)
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// CreateCategory creates a category owned by the current user. Ownership in
// the request body is ignored.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	p, exists := middleware.GetPrincipal(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.CreateCategory(p, services.CategoryInput{
		Name:     req.Name,
		ParentID: req.SubCategory,
	})
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryDTO(*category))
}

// UpdateCategory is the full-update handler (PUT)
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.categoryService.UpdateCategory(id, &req.Name, req.SubCategory, req.SubCategory == nil)
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// PatchCategory is the partial-update handler
func (h *CategoryHandler) PatchCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var name *string
	if v, ok := rawReq["name"]; ok {
		nameStr, ok := v.(string)
		if !ok || nameStr == "" {
			apierrors.BadRequest(c, "name must be a non-empty string")
			return
		}
		if len(nameStr) > constants.MaxNameLength {
			apierrors.BadRequest(c, fmt.Sprintf("name must be at most %d characters", constants.MaxNameLength))
			return
		}
		name = &nameStr
	}

	parentID, clearParent, err := patchID(rawReq, "sub_category")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.UpdateCategory(id, name, parentID, clearParent)
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// DeleteCategory deletes a category unless it is still referenced
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(id); err != nil {
		respondCategoryError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondCategoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrParentCategoryNotFound),
		errors.Is(err, services.ErrCategoryCycle):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrCategoryReferenced):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}

func parseIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}
