package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ndt-worklog/internal/dto"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/export"
	"github.com/yukikurage/ndt-worklog/internal/middleware"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/services"
	"github.com/yukikurage/ndt-worklog/internal/utils"
)

type WorkHoursHandler struct {
	workHours *services.WorkHoursService
}

func NewWorkHoursHandler(workHours *services.WorkHoursService) *WorkHoursHandler {
	return &WorkHoursHandler{workHours: workHours}
}

// ListWorkHours returns the entries visible to the current user, newest first
func (h *WorkHoursHandler) ListWorkHours(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	input, ok := bindWorkHoursQuery(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	input.Page, input.PageSize = params.Page, params.Limit

	entries, total, err := h.workHours.List(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WorkHourListResponse{
		Entries:    dto.ToWorkHourEntryDTOs(entries),
		Pagination: utils.NewPaginationResponse(params, total),
	})
}

// GetWorkHours returns the entry loaded by RequireEntryAccess
func (h *WorkHoursHandler) GetWorkHours(c *gin.Context) {
	entry, ok := middleware.GetEntry(c)
	if !ok {
		apierrors.InternalError(c, "Entry not found in context")
		return
	}
	c.JSON(http.StatusOK, dto.ToWorkHourEntryDTO(*entry))
}

// CreateWorkHours logs hours for the current user
func (h *WorkHoursHandler) CreateWorkHours(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.CreateWorkHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}
	workDate, err := dto.ParseDate(req.WorkDate)
	if err != nil {
		invalidDate(c, "work_date")
		return
	}

	entry, err := h.workHours.Create(actor, services.CreateWorkHoursInput{
		WorkDate:      workDate,
		JobNumber:     req.JobNumber,
		JobName:       req.JobName,
		ActivityType:  req.ActivityType,
		RepairCompany: req.RepairCompany,
		HoursWorked:   req.HoursWorked,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkHourEntryDTO(*entry))
}

// UpdateWorkHours applies a partial update to the entry
func (h *WorkHoursHandler) UpdateWorkHours(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	entry, ok := middleware.GetEntry(c)
	if !ok {
		apierrors.InternalError(c, "Entry not found in context")
		return
	}

	var req dto.UpdateWorkHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}
	workDate, err := dto.ParseDatePtr(req.WorkDate)
	if err != nil {
		invalidDate(c, "work_date")
		return
	}

	updated, err := h.workHours.Update(actor, entry.ID, services.UpdateWorkHoursInput{
		WorkDate:      workDate,
		JobNumber:     req.JobNumber,
		JobName:       req.JobName,
		ActivityType:  req.ActivityType,
		RepairCompany: req.RepairCompany,
		HoursWorked:   req.HoursWorked,
		Notes:         req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkHourEntryDTO(*updated))
}

// DeleteWorkHours removes the entry
func (h *WorkHoursHandler) DeleteWorkHours(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	entry, ok := middleware.GetEntry(c)
	if !ok {
		apierrors.InternalError(c, "Entry not found in context")
		return
	}

	if err := h.workHours.Delete(actor, entry.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Work hour entry deleted successfully",
	})
}

// Summary groups the visible entries by job, module and activity type
func (h *WorkHoursHandler) Summary(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	input, ok := bindWorkHoursQuery(c)
	if !ok {
		return
	}

	summary, err := h.workHours.Summary(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Draft proposes entries from a free-text work log. Nothing is stored.
func (h *WorkHoursHandler) Draft(c *gin.Context) {
	if _, ok := actorOrAbort(c); !ok {
		return
	}

	var req dto.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	drafts, err := h.workHours.DraftFromText(c.Request.Context(), req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": drafts,
	})
}

// ExportCSV downloads the visible entries matching the filters
func (h *WorkHoursHandler) ExportCSV(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	input, ok := bindWorkHoursQuery(c)
	if !ok {
		return
	}

	data, err := h.workHours.ExportCSV(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, h.workHours.ExportFilename()))
	c.Data(http.StatusOK, export.ContentType, data)
}

// UserStats returns period totals and overtime for the current user, or for
// user_id when the caller may read other users' hours
func (h *WorkHoursHandler) UserStats(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var query struct {
		UserID *uint64 `form:"user_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.BadRequest(c, "Invalid user_id")
		return
	}

	stats, err := h.workHours.UserStats(actor, query.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// TeamStats returns head count, active job orders and this month's hours
func (h *WorkHoursHandler) TeamStats(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	stats, err := h.workHours.TeamStats(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func bindWorkHoursQuery(c *gin.Context) (services.ListWorkHoursInput, bool) {
	var query dto.WorkHoursQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.BindingError(c, err)
		return services.ListWorkHoursInput{}, false
	}

	input := services.ListWorkHoursInput{
		UserID:    query.UserID,
		JobNumber: query.JobNumber,
	}
	var err error
	if input.StartDate, err = dto.ParseDatePtr(&query.StartDate); err != nil {
		invalidDate(c, "start_date")
		return input, false
	}
	if input.EndDate, err = dto.ParseDatePtr(&query.EndDate); err != nil {
		invalidDate(c, "end_date")
		return input, false
	}
	if query.ActivityType != "" {
		activity := models.ActivityType(query.ActivityType)
		input.ActivityType = &activity
	}
	return input, true
}
