package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ndt-worklog/internal/constants"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/logger"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/services"
)

// RequireEntryAccess loads the entry named by :id. Entries the user may not
// read are reported as not found to avoid leaking their existence.
func RequireEntryAccess(workHours *services.WorkHoursService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid entry ID")
			c.Abort()
			return
		}

		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		entry, err := workHours.Get(actor, entryID)
		if err != nil {
			if errors.Is(err, services.ErrEntryNotFound) {
				apierrors.NotFound(c, "Work hour entry not found")
			} else {
				logger.FromContext(c).Error().Err(err).Uint64("entry_id", entryID).Msg("Failed to load entry")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyEntry, entry)
		c.Next()
	}
}

// GetEntry returns the entry loaded by RequireEntryAccess
func GetEntry(c *gin.Context) (*models.WorkHourEntry, bool) {
	v, exists := c.Get(constants.ContextKeyEntry)
	if !exists {
		return nil, false
	}
	entry, ok := v.(*models.WorkHourEntry)
	return entry, ok
}
