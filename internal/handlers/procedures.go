package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ndt-worklog/internal/dto"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/services"
	"github.com/yukikurage/ndt-worklog/internal/storage"
)

type ProcedureHandler struct {
	procedures *services.ProcedureService
}

func NewProcedureHandler(procedures *services.ProcedureService) *ProcedureHandler {
	return &ProcedureHandler{procedures: procedures}
}

// ListProcedures returns current revisions; leaders may add
// ?include_superseded=true
func (h *ProcedureHandler) ListProcedures(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var query struct {
		JobNumber         string `form:"job_number"`
		ProcedureType     string `form:"procedure_type"`
		Status            string `form:"status"`
		IncludeSuperseded bool   `form:"include_superseded"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters")
		return
	}

	input := services.ListProceduresInput{
		JobNumber:         query.JobNumber,
		IncludeSuperseded: query.IncludeSuperseded,
	}
	if query.ProcedureType != "" {
		m := models.Method(query.ProcedureType)
		input.ProcedureType = &m
	}
	if query.Status != "" {
		s := models.ProcedureStatus(query.Status)
		input.Status = &s
	}

	procedures, err := h.procedures.List(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"procedures": dto.ToProcedureDTOs(procedures),
	})
}

func (h *ProcedureHandler) GetProcedure(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "procedure")
	if !ok {
		return
	}

	procedure, err := h.procedures.Get(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProcedureDTO(*procedure))
}

func (h *ProcedureHandler) CreateProcedure(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	input, ok := bindProcedure(c)
	if !ok {
		return
	}

	procedure, err := h.procedures.Create(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProcedureDTO(*procedure))
}

func (h *ProcedureHandler) UpdateProcedure(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "procedure")
	if !ok {
		return
	}
	input, ok := bindProcedure(c)
	if !ok {
		return
	}

	procedure, err := h.procedures.Update(actor, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProcedureDTO(*procedure))
}

func (h *ProcedureHandler) ApproveProcedure(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "procedure")
	if !ok {
		return
	}

	procedure, err := h.procedures.Approve(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProcedureDTO(*procedure))
}

func (h *ProcedureHandler) DeleteProcedure(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "procedure")
	if !ok {
		return
	}

	if err := h.procedures.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Procedure deleted successfully",
	})
}

// UploadDocument accepts a multipart form with a document field
func (h *ProcedureHandler) UploadDocument(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "procedure")
	if !ok {
		return
	}
	header, ok := requiredFormFile(c, storage.FieldDocument)
	if !ok {
		return
	}

	procedure, err := h.procedures.AttachDocument(actor, id, header)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProcedureDTO(*procedure))
}

func bindProcedure(c *gin.Context) (services.ProcedureInput, bool) {
	var req dto.ProcedureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return services.ProcedureInput{}, false
	}

	return services.ProcedureInput{
		JobNumber:         req.JobNumber,
		ProcedureCode:     req.ProcedureCode,
		ProcedureName:     req.ProcedureName,
		ProcedureType:     req.ProcedureType,
		Revision:          req.Revision,
		IsCurrentRevision: req.IsCurrentRevision,
		Description:       req.Description,
		Status:            req.Status,
	}, true
}
