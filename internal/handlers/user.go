package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minase/task-backend/internal/apierrors"
	"github.com/minase/task-backend/internal/constants"
	"github.com/minase/task-backend/internal/dto"
	"github.com/minase/task-backend/internal/services"
)

// UserHandler exposes the admin-only user management resource. The staff
// requirement is enforced by middleware on the route group.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns all users, newest joined first
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.CreateUser(services.UserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
		GroupIDs:    req.Groups,
	})
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// UpdateUser is the full-update handler (PUT): the complete write shape is
// bound, so omitted email and role flags are reset to their zero values. An
// omitted group list leaves memberships untouched.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UserUpdateInput{
		Username:    &req.Username,
		Email:       &req.Email,
		IsStaff:     &req.IsStaff,
		IsSuperuser: &req.IsSuperuser,
	}
	if req.Password != "" {
		input.Password = &req.Password
	}
	if req.Groups != nil {
		groups := req.Groups
		input.GroupIDs = &groups
	}

	user, err := h.userService.UpdateUser(id, input)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// PatchUser is the partial-update handler: only keys present in the body are
// applied, so a username-only patch never clears email or role flags.
func (h *UserHandler) PatchUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := buildUserPatchInput(rawReq)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateUser(id, *input)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

func buildUserPatchInput(raw map[string]any) (*services.UserUpdateInput, error) {
	input := &services.UserUpdateInput{}

	if v, ok := raw["username"]; ok {
		username, ok := v.(string)
		if !ok || username == "" {
			return nil, fmt.Errorf("username must be a non-empty string")
		}
		if len(username) > constants.MaxNameLength {
			return nil, fmt.Errorf("username must be at most %d characters", constants.MaxNameLength)
		}
		input.Username = &username
	}

	if v, ok := raw["email"]; ok {
		if v == nil {
			empty := ""
			input.Email = &empty
		} else {
			email, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("email must be a string")
			}
			input.Email = &email
		}
	}

	if v, ok := raw["password"]; ok {
		password, ok := v.(string)
		if !ok || password == "" {
			return nil, fmt.Errorf("password must be a non-empty string")
		}
		input.Password = &password
	}

	if v, ok := raw["is_staff"]; ok {
		staff, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("is_staff must be a boolean")
		}
		input.IsStaff = &staff
	}

	if v, ok := raw["is_superuser"]; ok {
		superuser, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("is_superuser must be a boolean")
		}
		input.IsSuperuser = &superuser
	}

	if v, ok := raw["groups"]; ok {
		groupIDs, err := patchIDList(v, "groups")
		if err != nil {
			return nil, err
		}
		input.GroupIDs = &groupIDs
	}

	return input, nil
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(id); err != nil {
		respondUserError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrUserReferenced):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrPasswordRequired),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrGroupNotFound):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
