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

// LookupHandlerTestSuite covers the status and tag resources
type LookupHandlerTestSuite struct {
	suite.Suite
	db            *gorm.DB
	statusHandler *StatusHandler
	tagHandler    *TagHandler
	router        *gin.Engine
}

// SetupTest runs before each test
func (suite *LookupHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Status{},
		&models.Tag{},
		&models.Task{},
		&models.TaskAssignment{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.statusHandler = NewStatusHandler(repository.NewStatusRepository(suite.db))
	suite.tagHandler = NewTagHandler(repository.NewTagRepository(suite.db))

	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/api/statuses", suite.statusHandler.ListStatuses)
	r.POST("/api/statuses", suite.statusHandler.CreateStatus)
	r.GET("/api/statuses/:id", suite.statusHandler.GetStatus)
	r.PUT("/api/statuses/:id", suite.statusHandler.UpdateStatus)
	r.PATCH("/api/statuses/:id", suite.statusHandler.UpdateStatus)
	r.DELETE("/api/statuses/:id", suite.statusHandler.DeleteStatus)
	r.GET("/api/tags", suite.tagHandler.ListTags)
	r.POST("/api/tags", suite.tagHandler.CreateTag)
	r.GET("/api/tags/:id", suite.tagHandler.GetTag)
	r.PUT("/api/tags/:id", suite.tagHandler.UpdateTag)
	r.DELETE("/api/tags/:id", suite.tagHandler.DeleteTag)
	suite.router = r
}

// TearDownTest runs after each test
func (suite *LookupHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *LookupHandlerTestSuite) do(method, url string, body any) *httptest.ResponseRecorder {
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

// TestStatusCRUD walks the status resource end to end
func (suite *LookupHandlerTestSuite) TestStatusCRUD() {
	w := suite.do("POST", "/api/statuses", map[string]any{"name": "Open"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created dto.StatusDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	suite.Equal("Open", created.Name)

	url := fmt.Sprintf("/api/statuses/%d", created.ID)

	w = suite.do("PUT", url, map[string]any{"name": "In Progress"})
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.do("GET", url, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var fetched dto.StatusDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &fetched))
	suite.Equal("In Progress", fetched.Name)

	w = suite.do("DELETE", url, nil)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.do("GET", url, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

// TestDeleteStatus_ReferencedByTask verifies the protected reference
func (suite *LookupHandlerTestSuite) TestDeleteStatus_ReferencedByTask() {
	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	suite.db.Create(user)

	status := &models.Status{Name: "Open"}
	suite.db.Create(status)
	suite.db.Create(&models.Task{Name: "Tracked", StatusID: &status.ID, CreatedByID: user.ID})

	w := suite.do("DELETE", fmt.Sprintf("/api/statuses/%d", status.ID), nil)
	suite.Equal(http.StatusConflict, w.Code)

	var count int64
	suite.db.Model(&models.Status{}).Count(&count)
	suite.Equal(int64(1), count)
}

// TestListStatuses_OrderedNewestFirst verifies id-descending ordering
func (suite *LookupHandlerTestSuite) TestListStatuses_OrderedNewestFirst() {
	suite.db.Create(&models.Status{Name: "Open"})
	suite.db.Create(&models.Status{Name: "Done"})

	w := suite.do("GET", "/api/statuses", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var response []dto.StatusDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response, 2)
	suite.Equal("Done", response[0].Name)
	suite.Equal("Open", response[1].Name)
}

// TestCreateStatus_Validation rejects an empty name
func (suite *LookupHandlerTestSuite) TestCreateStatus_Validation() {
	w := suite.do("POST", "/api/statuses", map[string]any{"name": ""})
	suite.Equal(http.StatusBadRequest, w.Code)
}

// TestDeleteTag_DetachesFromTasks verifies that tags delete freely, clearing
// the label from every task that carried it
func (suite *LookupHandlerTestSuite) TestDeleteTag_DetachesFromTasks() {
	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	suite.db.Create(user)

	tag := &models.Tag{Name: "urgent"}
	suite.db.Create(tag)

	task := &models.Task{Name: "Labelled", CreatedByID: user.ID}
	suite.db.Create(task)
	suite.Require().NoError(suite.db.Model(task).Association("Tags").Append(tag))

	w := suite.do("DELETE", fmt.Sprintf("/api/tags/%d", tag.ID), nil)
	suite.Equal(http.StatusNoContent, w.Code)

	var reloaded models.Task
	suite.Require().NoError(suite.db.Preload("Tags").First(&reloaded, task.ID).Error)
	suite.Empty(reloaded.Tags)

	var taskCount int64
	suite.db.Model(&models.Task{}).Count(&taskCount)
	suite.Equal(int64(1), taskCount)
}

// TestTagCRUD walks the tag resource end to end
func (suite *LookupHandlerTestSuite) TestTagCRUD() {
	w := suite.do("POST", "/api/tags", map[string]any{"name": "urgent"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created dto.TagDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	url := fmt.Sprintf("/api/tags/%d", created.ID)

	w = suite.do("PUT", url, map[string]any{"name": "later"})
	suite.Require().Equal(http.StatusOK, w.Code)

	var updated dto.TagDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Equal("later", updated.Name)

	w = suite.do("DELETE", url, nil)
	suite.Equal(http.StatusNoContent, w.Code)
}

// TestLookupHandlerTestSuite runs the test suite
func TestLookupHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(LookupHandlerTestSuite))
}
