package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/minase/task-backend/internal/apierrors"
	"github.com/minase/task-backend/internal/authz"
	"github.com/minase/task-backend/internal/constants"
	"github.com/minase/task-backend/internal/database"
	"github.com/minase/task-backend/internal/models"
)

// RequireTaskVisible loads the task on detail routes and enforces the
// visibility scope: creator, assignee, or superuser. Tasks outside the scope
// answer 404, not 403, so a user cannot discover a task they were never part
// of. Permission checks for mutation run later, against the loaded task.
func RequireTaskVisible() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskIDStr := c.Param("id")
		taskID, err := strconv.ParseUint(taskIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			c.Abort()
			return
		}

		p, exists := GetPrincipal(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var task models.Task
		if err := database.GetDB().
			Preload("Tags").
			Preload("Assignments").
			First(&task, taskID).Error; err != nil {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		assigneeIDs := make([]uint64, len(task.Assignments))
		for i, assignment := range task.Assignments {
			assigneeIDs[i] = assignment.UserID
		}

		if !authz.CanViewTask(p, task.CreatedByID, assigneeIDs) {
			apierrors.NotFound(c, "Task not found")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetContextTask retrieves the task loaded by RequireTaskVisible
func GetContextTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := value.(models.Task)
	return task, ok
}
