package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/logger"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/policy"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"gorm.io/gorm"
)

// RequireAuth checks if the user is authenticated via session, loads the
// account and rejects disabled users. A session whose user no longer exists
// is cleared.
func RequireAuth(userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := sessionUserID(session.Get(constants.ContextKeyUserID))
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := userRepo.FindByID(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				session.Clear()
				_ = session.Save()
				apierrors.Unauthorized(c, "")
			} else {
				logger.FromContext(c).Error().Err(err).Msg("Failed to load session user")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}
		if !user.Enabled {
			apierrors.AccountDisabled(c)
			c.Abort()
			return
		}

		// Store user ID and role in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUserRole, user.Role)
		c.Next()
	}
}

func sessionUserID(v interface{}) (uint64, bool) {
	switch id := v.(type) {
	case uint64:
		return id, id != 0
	case uint:
		return uint64(id), id != 0
	case int:
		return uint64(id), id > 0
	case int64:
		return uint64(id), id > 0
	default:
		return 0, false
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return sessionUserID(userID)
}

// GetActor returns the authenticated user as a policy actor
func GetActor(c *gin.Context) (policy.Actor, bool) {
	userID, ok := GetUserID(c)
	if !ok {
		return policy.Actor{}, false
	}
	role, ok := c.Get(constants.ContextKeyUserRole)
	if !ok {
		return policy.Actor{}, false
	}
	r, ok := role.(models.Role)
	if !ok {
		return policy.Actor{}, false
	}
	return policy.Actor{ID: userID, Role: r}, true
}
