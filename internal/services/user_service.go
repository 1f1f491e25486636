package services

import (
	"errors"
	"fmt"

	"github.com/minase/task-backend/internal/constants"
	"github.com/minase/task-backend/internal/models"
	"github.com/minase/task-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound    = errors.New("one or more groups do not exist")
	ErrPasswordRequired = errors.New("password is required")
	ErrUserReferenced   = errors.New("user is referenced by tasks, assignments or categories")
)

// UserService handles the admin-only user management operations. Role
// checks happen at the middleware layer; everything here assumes a staff
// principal.
type UserService struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, groupRepo repository.GroupRepository) *UserService {
	return &UserService{
		userRepo:  userRepo,
		groupRepo: groupRepo,
	}
}

// UserInput represents admin input for creating a user
type UserInput struct {
	Username    string
	Email       string
	Password    string
	IsStaff     bool
	IsSuperuser bool
	GroupIDs    []uint64
}

// UserUpdateInput carries admin changes to an account. Pointer fields are
// applied when non-nil, so a partial update touches only the keys it sends.
type UserUpdateInput struct {
	Username    *string
	Email       *string
	Password    *string
	IsStaff     *bool
	IsSuperuser *bool
	GroupIDs    *[]uint64
}

// ListUsers returns all users, newest joined first
func (s *UserService) ListUsers() ([]models.User, error) {
	return s.userRepo.List()
}

// GetUser returns a user with group memberships
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id, "Groups")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateUser creates a user account with the given role flags and group
// memberships
func (s *UserService) CreateUser(input UserInput) (*models.User, error) {
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(input.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	groups, err := s.resolveGroups(input.GroupIDs)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		IsStaff:      input.IsStaff,
		IsSuperuser:  input.IsSuperuser,
		Groups:       groups,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.GetUser(user.ID)
}

// UpdateUser applies admin changes to an account. Fields left nil stay
// untouched; an omitted or empty password leaves the current credential in
// place; a supplied group list is replaced wholesale.
func (s *UserService) UpdateUser(id uint64, input UserUpdateInput) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		if _, err := s.userRepo.FindByUsername(*input.Username); err == nil {
			return nil, ErrUsernameTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.IsStaff != nil {
		user.IsStaff = *input.IsStaff
	}
	if input.IsSuperuser != nil {
		user.IsSuperuser = *input.IsSuperuser
	}

	if input.Password != nil && *input.Password != "" {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if input.GroupIDs != nil {
		groups, err := s.resolveGroups(*input.GroupIDs)
		if err != nil {
			return nil, err
		}
		if groups == nil {
			groups = []models.Group{}
		}
		if err := s.userRepo.ReplaceGroups(user, groups); err != nil {
			return nil, fmt.Errorf("failed to replace groups: %w", err)
		}
	}

	return s.GetUser(user.ID)
}

// DeleteUser removes a user account. An account still referenced as a task
// creator, an assignment author, or a category owner is protected; the
// user's own assignment rows and group memberships go with the account.
func (s *UserService) DeleteUser(id uint64) error {
	if _, err := s.GetUser(id); err != nil {
		return err
	}

	tasks, err := s.userRepo.CountCreatedTasks(id)
	if err != nil {
		return fmt.Errorf("failed to check task references: %w", err)
	}
	assignments, err := s.userRepo.CountCreatedAssignments(id)
	if err != nil {
		return fmt.Errorf("failed to check assignment references: %w", err)
	}
	categories, err := s.userRepo.CountCategories(id)
	if err != nil {
		return fmt.Errorf("failed to check category references: %w", err)
	}
	if tasks > 0 || assignments > 0 || categories > 0 {
		return ErrUserReferenced
	}

	if err := s.userRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// resolveGroups loads the referenced groups and fails if any id is unknown
func (s *UserService) resolveGroups(groupIDs []uint64) ([]models.Group, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	unique := uniqueUint64(groupIDs)
	groups, err := s.groupRepo.FindByIDs(unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	if len(groups) != len(unique) {
		return nil, ErrGroupNotFound
	}
	return groups, nil
}
