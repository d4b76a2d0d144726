package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/logger"
	"github.com/yukikurage/ndt-worklog/internal/middleware"
	"github.com/yukikurage/ndt-worklog/internal/policy"
	"github.com/yukikurage/ndt-worklog/internal/services"
	"github.com/yukikurage/ndt-worklog/internal/storage"
)

// respondServiceError maps service errors onto API error responses.
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var ferr *storage.FileTypeError

	switch {
	case errors.As(err, &verr):
		details := make([]apierrors.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			details[i] = apierrors.FieldError{Field: f.Field, Message: f.Message}
		}
		apierrors.BadRequestWithDetails(c, "Validation failed", details)
	case errors.As(err, &ferr):
		apierrors.BadRequestWithDetails(c, ferr.Error(), []apierrors.FieldError{{Field: ferr.Field, Message: "must be a " + ferr.Allowed + " file"}})
	case errors.Is(err, storage.ErrUnknownField),
		errors.Is(err, storage.ErrInvalidName):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, storage.ErrFileTooLarge):
		apierrors.PayloadTooLarge(c, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrAccountDisabled):
		apierrors.AccountDisabled(c)
	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrSelfTarget):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrEntryNotFound),
		errors.Is(err, services.ErrJobOrderNotFound),
		errors.Is(err, services.ErrEquipmentNotFound),
		errors.Is(err, services.ErrProcedureNotFound),
		errors.Is(err, services.ErrQualificationNotFound),
		errors.Is(err, storage.ErrFileNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrJobNumberTaken):
		apierrors.Conflict(c, err.Error())

	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoValidEntries):
		apierrors.RespondWithError(c, http.StatusUnprocessableEntity, apierrors.NewAPIError(apierrors.ErrCodeInvalidInput, err.Error()))

	default:
		logger.FromContext(c).Error().Err(err).Msg("Request failed")
		apierrors.InternalError(c, "")
	}
}

// actorOrAbort returns the authenticated actor, answering 401 when missing.
func actorOrAbort(c *gin.Context) (policy.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return actor, ok
}

// paramID parses the :id path parameter, answering 400 when invalid.
func paramID(c *gin.Context, what string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+what+" ID")
		return 0, false
	}
	return id, true
}

// invalidDate answers 400 for a date field that did not parse.
func invalidDate(c *gin.Context, field string) {
	apierrors.BadRequestWithDetails(c, "Validation failed", []apierrors.FieldError{{Field: field, Message: "must be a date formatted 2006-01-02"}})
}
