package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/minase/task-backend/internal/apierrors"
	"github.com/minase/task-backend/internal/authz"
	"github.com/minase/task-backend/internal/constants"
	"github.com/minase/task-backend/internal/database"
	"github.com/minase/task-backend/internal/models"
)

// RequireAuth resolves the session to a principal. The session only carries
// the user id; role flags are loaded fresh on every request so a revoked
// staff bit takes effect immediately.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		rawID := session.Get(constants.ContextKeyUserID)

		userID, ok := toUserID(rawID)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().First(&user, userID).Error; err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyPrincipal, authz.Principal{
			ID:          user.ID,
			IsStaff:     user.IsStaff,
			IsSuperuser: user.IsSuperuser,
		})
		c.Next()
	}
}

// RequireStaff rejects non-staff principals. Must run after RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, exists := GetPrincipal(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !authz.CanManageUsers(p) {
			apierrors.Forbidden(c, "Staff access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the resolved principal from context
func GetPrincipal(c *gin.Context) (authz.Principal, bool) {
	value, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return authz.Principal{}, false
	}
	p, ok := value.(authz.Principal)
	return p, ok
}

func toUserID(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
