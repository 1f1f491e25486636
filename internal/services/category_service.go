package services

import (
	"errors"
	"fmt"

	"github.com/minase/task-backend/internal/authz"
	"github.com/minase/task-backend/internal/models"
	"github.com/minase/task-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound       = errors.New("category not found")
	ErrParentCategoryNotFound = errors.New("parent category does not exist")
	ErrCategoryCycle          = errors.New("parent category reference would create a cycle")
	ErrCategoryReferenced     = errors.New("category is referenced by other categories or tasks")
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CategoryInput represents input for creating or updating a category
type CategoryInput struct {
	Name     string
	ParentID *uint64
}

// ListCategories returns all categories, newest first
func (s *CategoryService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.List()
}

// GetCategory returns a category by id
func (s *CategoryService) GetCategory(id uint64) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}

// CreateCategory creates a category owned by the principal. Any owner value
// a client puts in the request body is never bound, so ownership cannot be
// spoofed.
func (s *CategoryService) CreateCategory(p authz.Principal, input CategoryInput) (*models.Category, error) {
	if err := s.validateParent(0, input.ParentID); err != nil {
		return nil, err
	}

	ownerID := p.ID
	category := &models.Category{
		Name:     input.Name,
		ParentID: input.ParentID,
		UserID:   &ownerID,
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// UpdateCategory applies name and parent changes. The owner set at creation
// is never rewritten.
func (s *CategoryService) UpdateCategory(id uint64, name *string, parentID *uint64, clearParent bool) (*models.Category, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if err := s.validateParent(id, parentID); err != nil {
			return nil, err
		}
	}

	if name != nil {
		category.Name = *name
	}
	if clearParent {
		category.ParentID = nil
	} else if parentID != nil {
		category.ParentID = parentID
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory deletes a category unless other categories or tasks still
// reference it; protected references are rejected, never cascaded.
func (s *CategoryService) DeleteCategory(id uint64) error {
	if _, err := s.GetCategory(id); err != nil {
		return err
	}

	children, err := s.categoryRepo.CountChildren(id)
	if err != nil {
		return fmt.Errorf("failed to check category references: %w", err)
	}
	tasks, err := s.categoryRepo.CountTasks(id)
	if err != nil {
		return fmt.Errorf("failed to check task references: %w", err)
	}
	if children > 0 || tasks > 0 {
		return ErrCategoryReferenced
	}

	if err := s.categoryRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// validateParent checks that the parent category exists and that adopting it
// would not create a cycle in the category tree. id is zero for new
// categories.
func (s *CategoryService) validateParent(id uint64, parentID *uint64) error {
	if parentID == nil {
		return nil
	}
	if id != 0 && *parentID == id {
		return ErrCategoryCycle
	}

	current := *parentID
	for {
		parent, err := s.categoryRepo.FindByID(current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if current == *parentID {
					return ErrParentCategoryNotFound
				}
				return nil
			}
			return fmt.Errorf("failed to walk parent chain: %w", err)
		}
		if parent.ParentID == nil {
			return nil
		}
		if id != 0 && *parent.ParentID == id {
			return ErrCategoryCycle
		}
		current = *parent.ParentID
	}
}
