package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ndt-worklog/internal/dto"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/services"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetSettings is readable by every authenticated user
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	if _, ok := actorOrAbort(c); !ok {
		return
	}

	settings, err := h.settings.Get()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSettingsDTO(*settings))
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	settings, err := h.settings.Update(actor, services.UpdateSettingsInput{
		Timezone:       req.Timezone,
		StandardHours:  req.StandardHours,
		DailyReminders: req.DailyReminders,
		WeeklyReports:  req.WeeklyReports,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSettingsDTO(*settings))
}
