package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ndt-worklog/internal/dto"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/services"
	"github.com/yukikurage/ndt-worklog/internal/storage"
)

type EquipmentHandler struct {
	equipment *services.EquipmentService
	now       func() time.Time
}

func NewEquipmentHandler(equipment *services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipment: equipment, now: time.Now}
}

// ListEquipment returns the visible equipment with calibration warnings
func (h *EquipmentHandler) ListEquipment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var query struct {
		AssignedOperatorID *uint64 `form:"assigned_operator_id"`
		EquipmentType      string  `form:"equipment_type"`
		Status             string  `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		apierrors.BadRequest(c, "Invalid query parameters")
		return
	}

	input := services.ListEquipmentInput{AssignedOperatorID: query.AssignedOperatorID}
	if query.EquipmentType != "" {
		t := models.EquipmentType(query.EquipmentType)
		input.EquipmentType = &t
	}
	if query.Status != "" {
		s := models.EquipmentStatus(query.Status)
		input.Status = &s
	}

	items, err := h.equipment.List(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"equipment": dto.ToEquipmentDTOs(items, h.now()),
	})
}

func (h *EquipmentHandler) GetEquipment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "equipment")
	if !ok {
		return
	}

	item, err := h.equipment.Get(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEquipmentDTO(*item, h.now()))
}

func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	input, ok := bindEquipment(c)
	if !ok {
		return
	}

	item, err := h.equipment.Create(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEquipmentDTO(*item, h.now()))
}

func (h *EquipmentHandler) UpdateEquipment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "equipment")
	if !ok {
		return
	}
	input, ok := bindEquipment(c)
	if !ok {
		return
	}

	item, err := h.equipment.Update(actor, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEquipmentDTO(*item, h.now()))
}

func (h *EquipmentHandler) DeleteEquipment(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "equipment")
	if !ok {
		return
	}

	if err := h.equipment.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Equipment deleted successfully",
	})
}

// UploadFiles accepts a multipart form with calibrationCertificate and/or
// equipmentPhoto
func (h *EquipmentHandler) UploadFiles(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "equipment")
	if !ok {
		return
	}

	certificate, ok := optionalFormFile(c, storage.FieldCalibrationCertificate)
	if !ok {
		return
	}
	photo, ok := optionalFormFile(c, storage.FieldEquipmentPhoto)
	if !ok {
		return
	}

	item, err := h.equipment.AttachFiles(actor, id, certificate, photo)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEquipmentDTO(*item, h.now()))
}

func bindEquipment(c *gin.Context) (services.EquipmentInput, bool) {
	var req dto.EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return services.EquipmentInput{}, false
	}
	expiry, err := dto.ParseDatePtr(req.CalibrationExpiry)
	if err != nil {
		invalidDate(c, "calibration_expiry")
		return services.EquipmentInput{}, false
	}

	return services.EquipmentInput{
		EquipmentType:        req.EquipmentType,
		Brand:                req.Brand,
		Model:                req.Model,
		InternalSerialNumber: req.InternalSerialNumber,
		SerialNumber:         req.SerialNumber,
		CalibrationExpiry:    expiry,
		ClearCalibration:     req.ClearCalibration,
		AssignedOperatorID:   req.AssignedOperatorID,
		ClearAssignment:      req.ClearAssignment,
		Status:               req.Status,
	}, true
}

// optionalFormFile returns nil when the field is absent. Unreadable forms
// answer 400, or 413 when the body exceeded the size limit.
func optionalFormFile(c *gin.Context, field string) (*multipart.FileHeader, bool) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.PayloadTooLarge(c, "")
		} else {
			apierrors.BadRequest(c, "Invalid multipart form")
		}
		return nil, false
	}
	return header, true
}

// requiredFormFile is optionalFormFile for a single mandatory field.
func requiredFormFile(c *gin.Context, field string) (*multipart.FileHeader, bool) {
	header, ok := optionalFormFile(c, field)
	if ok && header == nil {
		apierrors.BadRequestWithDetails(c, "Validation failed", []apierrors.FieldError{{Field: field, Message: "is required"}})
		return nil, false
	}
	return header, ok
}
