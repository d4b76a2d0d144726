package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ndt-worklog/internal/dto"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/services"
	"github.com/yukikurage/ndt-worklog/internal/storage"
)

type QualificationHandler struct {
	qualifications *services.QualificationService
	now            func() time.Time
}

func NewQualificationHandler(qualifications *services.QualificationService) *QualificationHandler {
	return &QualificationHandler{qualifications: qualifications, now: time.Now}
}

// ListQualifications returns the visible qualifications with their effective
// status and expiry warning
func (h *QualificationHandler) ListQualifications(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var query struct {
		OperatorID        *uint64 `form:"operator_id"`
		QualificationType string  `form:"qualification_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters")
		return
	}

	input := services.ListQualificationsInput{OperatorID: query.OperatorID}
	if query.QualificationType != "" {
		m := models.Method(query.QualificationType)
		input.QualificationType = &m
	}

	items, err := h.qualifications.List(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qualifications": dto.ToQualificationDTOs(items, h.now()),
	})
}

func (h *QualificationHandler) GetQualification(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "qualification")
	if !ok {
		return
	}

	q, err := h.qualifications.Get(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQualificationDTO(*q, h.now()))
}

func (h *QualificationHandler) CreateQualification(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	input, ok := bindQualification(c)
	if !ok {
		return
	}

	q, err := h.qualifications.Create(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToQualificationDTO(*q, h.now()))
}

func (h *QualificationHandler) UpdateQualification(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "qualification")
	if !ok {
		return
	}
	input, ok := bindQualification(c)
	if !ok {
		return
	}

	q, err := h.qualifications.Update(actor, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQualificationDTO(*q, h.now()))
}

func (h *QualificationHandler) DeleteQualification(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "qualification")
	if !ok {
		return
	}

	if err := h.qualifications.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Qualification deleted successfully",
	})
}

// UploadDocument accepts a multipart form with a certificate field
func (h *QualificationHandler) UploadDocument(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "qualification")
	if !ok {
		return
	}
	header, ok := requiredFormFile(c, storage.FieldCertificate)
	if !ok {
		return
	}

	q, err := h.qualifications.AttachDocument(actor, id, header)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQualificationDTO(*q, h.now()))
}

func bindQualification(c *gin.Context) (services.QualificationInput, bool) {
	var req dto.QualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return services.QualificationInput{}, false
	}
	issue, err := dto.ParseDatePtr(req.IssueDate)
	if err != nil {
		invalidDate(c, "issue_date")
		return services.QualificationInput{}, false
	}
	expiry, err := dto.ParseDatePtr(req.ExpiryDate)
	if err != nil {
		invalidDate(c, "expiry_date")
		return services.QualificationInput{}, false
	}

	return services.QualificationInput{
		OperatorID:          req.OperatorID,
		QualificationType:   req.QualificationType,
		Level:               req.Level,
		CertificationNumber: req.CertificationNumber,
		IssuingBody:         req.IssuingBody,
		IssueDate:           issue,
		ExpiryDate:          expiry,
		Status:              req.Status,
		Notes:               req.Notes,
	}, true
}
