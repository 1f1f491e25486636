package dto

import "github.com/minase/task-backend/internal/models"

// CategoryRequest is the write shape for categories. The owner is never
// bound from the body: it is forced to the acting user on create and left
// unchanged on update.
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=50"`
	SubCategory *uint64 `json:"sub_category"`
}

// CategoryDTO represents a category in API responses
type CategoryDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	SubCategory *uint64 `json:"sub_category"`
	User        *uint64 `json:"user"`
}

// ToCategoryDTO converts a Category model to CategoryDTO
func ToCategoryDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		SubCategory: category.ParentID,
		User:        category.UserID,
	}
}

// ToCategoryDTOs converts a slice of categories
func ToCategoryDTOs(categories []models.Category) []CategoryDTO {
	dtos := make([]CategoryDTO, len(categories))
	for i, category := range categories {
		dtos[i] = ToCategoryDTO(category)
	}
	return dtos
}
