package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/minase/task-backend/internal/database"
	"github.com/minase/task-backend/internal/dto"
	"github.com/minase/task-backend/internal/models"
	"github.com/minase/task-backend/internal/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// GroupHandlerTestSuite defines the test suite for GroupHandler
type GroupHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *GroupHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.User{}, &models.Group{})
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	handler := NewGroupHandler(repository.NewGroupRepository(suite.db))

	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/api/groups", handler.ListGroups)
	r.POST("/api/groups", handler.CreateGroup)
	r.GET("/api/groups/:id", handler.GetGroup)
	r.PUT("/api/groups/:id", handler.UpdateGroup)
	r.PATCH("/api/groups/:id", handler.UpdateGroup)
	r.DELETE("/api/groups/:id", handler.DeleteGroup)
	suite.router = r
}

// TearDownTest runs after each test
func (suite *GroupHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *GroupHandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
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
	suite.router.ServeHTTP(w, req)
	return w
}

// TestGroupCRUD walks the group resource end to end
func (suite *GroupHandlerTestSuite) TestGroupCRUD() {
	w := suite.do("POST", "/api/groups", map[string]any{"name": "developers"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created dto.GroupDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	suite.Equal("developers", created.Name)

	url := fmt.Sprintf("/api/groups/%d", created.ID)

	w = suite.do("PATCH", url, map[string]any{"name": "engineers"})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do("GET", url, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var fetched dto.GroupDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &fetched))
	suite.Equal("engineers", fetched.Name)

	w = suite.do("DELETE", url, nil)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do("GET", url, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

// TestListGroups_OrderedByName verifies alphabetical ordering
func (suite *GroupHandlerTestSuite) TestListGroups_OrderedByName() {
	suite.db.Create(&models.Group{Name: "operators"})
	suite.db.Create(&models.Group{Name: "developers"})

	w := suite.do("GET", "/api/groups", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response []dto.GroupDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response, 2)
	suite.Equal("developers", response[0].Name)
	suite.Equal("operators", response[1].Name)
}

// TestGroupNameUniqueness verifies that a duplicate name answers 409 on
// create and on rename, instead of tripping the unique index
func (suite *GroupHandlerTestSuite) TestGroupNameUniqueness() {
	suite.db.Create(&models.Group{Name: "developers"})
	other := &models.Group{Name: "operators"}
	suite.db.Create(other)

	w := suite.do("POST", "/api/groups", map[string]any{"name": "developers"})
	suite.Equal(http.StatusConflict, w.Code)

	var count int64
	suite.db.Model(&models.Group{}).Count(&count)
	suite.Equal(int64(2), count)

	w = suite.do("PATCH", fmt.Sprintf("/api/groups/%d", other.ID), map[string]any{"name": "developers"})
	suite.Equal(http.StatusConflict, w.Code)

	// Saving a group under its own name is not a collision
	w = suite.do("PUT", fmt.Sprintf("/api/groups/%d", other.ID), map[string]any{"name": "operators"})
	suite.Equal(http.StatusOK, w.Code)
}

// TestDeleteGroup_DetachesMembers verifies that deleting a group removes the
// memberships without touching the user accounts
func (suite *GroupHandlerTestSuite) TestDeleteGroup_DetachesMembers() {
	group := &models.Group{Name: "developers"}
	suite.db.Create(group)

	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	suite.db.Create(user)
	suite.Require().NoError(suite.db.Model(user).Association("Groups").Append(group))

	w := suite.do("DELETE", fmt.Sprintf("/api/groups/%d", group.ID), nil)
	suite.Equal(http.StatusNoContent, w.Code)

	var reloaded models.User
	suite.Require().NoError(suite.db.Preload("Groups").First(&reloaded, user.ID).Error)
	suite.Empty(reloaded.Groups)
}

// TestGroupHandlerTestSuite runs the test suite
func TestGroupHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GroupHandlerTestSuite))
}
