package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minase/task-backend/internal/authz"
	"github.com/minase/task-backend/internal/constants"
	"github.com/minase/task-backend/internal/database"
	"github.com/minase/task-backend/internal/dto"
	"github.com/minase/task-backend/internal/middleware"
	"github.com/minase/task-backend/internal/models"
	"github.com/minase/task-backend/internal/repository"
	"github.com/minase/task-backend/internal/services"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// UserHandlerTestSuite defines the test suite for UserHandler
type UserHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *UserHandler
}

// SetupTest runs before each test
func (suite *UserHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Category{},
		&models.Task{},
		&models.TaskAssignment{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	groupRepo := repository.NewGroupRepository(suite.db)
	userService := services.NewUserService(userRepo, groupRepo)
	suite.handler = NewUserHandler(userService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *UserHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// router mounts the user routes behind the staff requirement, exactly as the
// server wires them.
func (suite *UserHandlerTestSuite) router(p authz.Principal) *gin.Engine {
	r := gin.New()
	inject := func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, p.ID)
		c.Set(constants.ContextKeyPrincipal, p)
	}
	users := r.Group("/api/users", inject, middleware.RequireStaff())
	users.GET("", suite.handler.ListUsers)
	users.POST("", suite.handler.CreateUser)
	users.GET("/:id", suite.handler.GetUser)
	users.PUT("/:id", suite.handler.UpdateUser)
	users.PATCH("/:id", suite.handler.PatchUser)
	users.DELETE("/:id", suite.handler.DeleteUser)
	return r
}

func (suite *UserHandlerTestSuite) do(r *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (suite *UserHandlerTestSuite) createUser(username string, staff bool) *models.User {
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		IsStaff:      staff,
	}
	suite.db.Create(user)
	return user
}

func (suite *UserHandlerTestSuite) createGroup(name string) *models.Group {
	group := &models.Group{Name: name}
	suite.db.Create(group)
	return group
}

// TestUserRoutes_RequireStaff verifies that a regular user is locked out of
// the whole resource
func (suite *UserHandlerTestSuite) TestUserRoutes_RequireStaff() {
	alice := suite.createUser("alice", false)
	r := suite.router(principalFor(alice))

	w := suite.do(r, "GET", "/api/users", nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.do(r, "POST", "/api/users", map[string]any{"username": "newuser", "password": "supersecret"})
	suite.Equal(http.StatusForbidden, w.Code)

	var count int64
	suite.db.Model(&models.User{}).Count(&count)
	suite.Equal(int64(1), count)
}

// TestCreateUser_WithFlagsAndGroups tests the staff create path, including
// role flags and group membership
func (suite *UserHandlerTestSuite) TestCreateUser_WithFlagsAndGroups() {
	admin := suite.createUser("admin", true)
	devs := suite.createGroup("developers")
	ops := suite.createGroup("operators")

	w := suite.do(suite.router(principalFor(admin)), "POST", "/api/users", map[string]any{
		"username":     "newstaff",
		"email":        "newstaff@example.com",
		"password":     "supersecret",
		"is_staff":     true,
		"is_superuser": true,
		"groups":       []uint64{devs.ID, ops.ID},
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var response dto.UserDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("newstaff", response.Username)
	suite.True(response.IsStaff)
	suite.True(response.IsSuperuser)
	suite.ElementsMatch([]uint64{devs.ID, ops.ID}, response.Groups)

	// The stored hash is never the raw password
	var stored models.User
	suite.Require().NoError(suite.db.Where("username = ?", "newstaff").First(&stored).Error)
	suite.NotEqual("supersecret", stored.PasswordHash)
	suite.NotEmpty(stored.PasswordHash)
}

// TestCreateUser_Validation covers the rejection paths
func (suite *UserHandlerTestSuite) TestCreateUser_Validation() {
	admin := suite.createUser("admin", true)
	r := suite.router(principalFor(admin))

	// Password too short
	w := suite.do(r, "POST", "/api/users", map[string]any{"username": "shorty", "password": "short"})
	suite.Equal(http.StatusBadRequest, w.Code)

	// Username already taken
	w = suite.do(r, "POST", "/api/users", map[string]any{"username": "admin", "password": "supersecret"})
	suite.Equal(http.StatusConflict, w.Code)

	// Unknown group
	w = suite.do(r, "POST", "/api/users", map[string]any{
		"username": "grouped",
		"password": "supersecret",
		"groups":   []uint64{9999},
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestUpdateUser_ReplacesGroups verifies that a supplied groups list replaces
// membership wholesale, and an omitted one leaves it alone
func (suite *UserHandlerTestSuite) TestUpdateUser_ReplacesGroups() {
	admin := suite.createUser("admin", true)
	devs := suite.createGroup("developers")
	ops := suite.createGroup("operators")

	user := suite.createUser("bob", false)
	suite.Require().NoError(suite.db.Model(user).Association("Groups").Append(devs))

	r := suite.router(principalFor(admin))
	url := fmt.Sprintf("/api/users/%d", user.ID)

	w := suite.do(r, "PATCH", url, map[string]any{
		"username": "bob",
		"groups":   []uint64{ops.ID},
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.UserDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal([]uint64{ops.ID}, response.Groups)

	// Omitted groups key leaves membership untouched
	w = suite.do(r, "PATCH", url, map[string]any{"username": "bob-renamed"})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("bob-renamed", response.Username)
	suite.Equal([]uint64{ops.ID}, response.Groups)
}

// TestListUsers_OrderedNewestJoinedFirst verifies the date_joined ordering
func (suite *UserHandlerTestSuite) TestListUsers_OrderedNewestJoinedFirst() {
	admin := suite.createUser("admin", true)
	older := suite.createUser("older", false)
	newer := suite.createUser("newer", false)

	suite.db.Model(older).Update("date_joined", time.Now().Add(-48*time.Hour))
	suite.db.Model(newer).Update("date_joined", time.Now().Add(-1*time.Hour))
	suite.db.Model(admin).Update("date_joined", time.Now().Add(-24*time.Hour))

	w := suite.do(suite.router(principalFor(admin)), "GET", "/api/users", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response []dto.UserDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response, 3)
	suite.Equal("newer", response[0].Username)
	suite.Equal("admin", response[1].Username)
	suite.Equal("older", response[2].Username)
}

// TestPatchUser_PreservesOmittedFields verifies partial-update semantics: a
// username-only patch must not clear email or reset the role flags
func (suite *UserHandlerTestSuite) TestPatchUser_PreservesOmittedFields() {
	admin := suite.createUser("admin", true)

	target := &models.User{
		Username:     "dave",
		Email:        "dave@example.com",
		PasswordHash: "hashedpassword",
		IsStaff:      true,
		IsSuperuser:  true,
	}
	suite.db.Create(target)

	w := suite.do(suite.router(principalFor(admin)), "PATCH", fmt.Sprintf("/api/users/%d", target.ID), map[string]any{
		"username": "dave2",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.UserDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("dave2", response.Username)
	suite.Equal("dave@example.com", response.Email)
	suite.True(response.IsStaff)
	suite.True(response.IsSuperuser)

	var stored models.User
	suite.Require().NoError(suite.db.First(&stored, target.ID).Error)
	suite.Equal("dave@example.com", stored.Email)
	suite.True(stored.IsStaff)
	suite.True(stored.IsSuperuser)
}

// TestPatchUser_FlagsOnly verifies that a flags-only patch leaves the
// username alone
func (suite *UserHandlerTestSuite) TestPatchUser_FlagsOnly() {
	admin := suite.createUser("admin", true)
	bob := suite.createUser("bob", false)

	w := suite.do(suite.router(principalFor(admin)), "PATCH", fmt.Sprintf("/api/users/%d", bob.ID), map[string]any{
		"is_staff": true,
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.UserDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("bob", response.Username)
	suite.True(response.IsStaff)
	suite.False(response.IsSuperuser)
}

// TestDeleteUser_ReferencedProtected: a user still referenced as a task
// creator, assignment author or category owner answers 409 with all rows
// intact
func (suite *UserHandlerTestSuite) TestDeleteUser_ReferencedProtected() {
	admin := suite.createUser("admin", true)
	r := suite.router(principalFor(admin))

	// Task creator
	creator := suite.createUser("creator", false)
	suite.db.Create(&models.Task{Name: "Owned task", CreatedByID: creator.ID})

	w := suite.do(r, "DELETE", fmt.Sprintf("/api/users/%d", creator.ID), nil)
	suite.Equal(http.StatusConflict, w.Code)
	var userCount int64
	suite.db.Model(&models.User{}).Where("id = ?", creator.ID).Count(&userCount)
	suite.Equal(int64(1), userCount)

	// Category owner
	owner := suite.createUser("owner", false)
	suite.db.Create(&models.Category{Name: "Owned", UserID: &owner.ID})

	w = suite.do(r, "DELETE", fmt.Sprintf("/api/users/%d", owner.ID), nil)
	suite.Equal(http.StatusConflict, w.Code)

	// Assignment author: admin2 assigned someone else's work
	author := suite.createUser("author", true)
	task := &models.Task{Name: "Delegated", CreatedByID: admin.ID}
	suite.db.Create(task)
	other := suite.createUser("other", false)
	suite.db.Create(&models.TaskAssignment{TaskID: task.ID, UserID: other.ID, CreatedByID: author.ID, AssignedAt: time.Now()})

	w = suite.do(r, "DELETE", fmt.Sprintf("/api/users/%d", author.ID), nil)
	suite.Equal(http.StatusConflict, w.Code)
}

// TestDeleteUser_OwnAssignmentsCascade: being assigned to tasks does not
// protect an account; the membership rows go with it
func (suite *UserHandlerTestSuite) TestDeleteUser_OwnAssignmentsCascade() {
	admin := suite.createUser("admin", true)
	assignee := suite.createUser("assignee", false)

	task := &models.Task{Name: "Ship release", CreatedByID: admin.ID}
	suite.db.Create(task)
	suite.db.Create(&models.TaskAssignment{TaskID: task.ID, UserID: assignee.ID, CreatedByID: admin.ID, AssignedAt: time.Now()})

	w := suite.do(suite.router(principalFor(admin)), "DELETE", fmt.Sprintf("/api/users/%d", assignee.ID), nil)
	suite.Equal(http.StatusNoContent, w.Code)

	var assignmentCount int64
	suite.db.Model(&models.TaskAssignment{}).Where("user_id = ?", assignee.ID).Count(&assignmentCount)
	suite.Equal(int64(0), assignmentCount)

	var taskCount int64
	suite.db.Model(&models.Task{}).Count(&taskCount)
	suite.Equal(int64(1), taskCount)
}

// TestDeleteUser tests removal and the missing-id path
func (suite *UserHandlerTestSuite) TestDeleteUser() {
	admin := suite.createUser("admin", true)
	bob := suite.createUser("bob", false)
	r := suite.router(principalFor(admin))

	w := suite.do(r, "DELETE", fmt.Sprintf("/api/users/%d", bob.ID), nil)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do(r, "DELETE", fmt.Sprintf("/api/users/%d", bob.ID), nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

// TestUserHandlerTestSuite runs the test suite
func TestUserHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}
