package dto

import "github.com/minase/task-backend/internal/models"

// NamedRequest is the write shape shared by statuses, tags and groups.
type NamedRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// StatusDTO represents a status in API responses
type StatusDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// GroupDTO represents a group in API responses
type GroupDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ToStatusDTO converts a Status model to StatusDTO
func ToStatusDTO(status models.Status) StatusDTO {
	return StatusDTO{
		ID:   status.ID,
		Name: status.Name,
	}
}

// ToStatusDTOs converts a slice of statuses
func ToStatusDTOs(statuses []models.Status) []StatusDTO {
	dtos := make([]StatusDTO, len(statuses))
	for i, status := range statuses {
		dtos[i] = ToStatusDTO(status)
	}
	return dtos
}

// ToTagDTOs converts a slice of tags
func ToTagDTOs(tags []models.Tag) []TagDTO {
	dtos := make([]TagDTO, len(tags))
	for i, tag := range tags {
		dtos[i] = ToTagDTO(tag)
	}
	return dtos
}

// ToGroupDTO converts a Group model to GroupDTO
func ToGroupDTO(group models.Group) GroupDTO {
	return GroupDTO{
		ID:   group.ID,
		Name: group.Name,
	}
}

// ToGroupDTOs converts a slice of groups
func ToGroupDTOs(groups []models.Group) []GroupDTO {
	dtos := make([]GroupDTO, len(groups))
	for i, group := range groups {
		dtos[i] = ToGroupDTO(group)
	}
	return dtos
}
