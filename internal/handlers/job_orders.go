package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ndt-worklog/internal/dto"
	apierrors "github.com/yukikurage/ndt-worklog/internal/errors"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/services"
)

type JobOrderHandler struct {
	jobOrders *services.JobOrderService
}

func NewJobOrderHandler(jobOrders *services.JobOrderService) *JobOrderHandler {
	return &JobOrderHandler{jobOrders: jobOrders}
}

// ListJobOrders lists the registry, optionally filtered by ?status=
func (h *JobOrderHandler) ListJobOrders(c *gin.Context) {
	if _, ok := actorOrAbort(c); !ok {
		return
	}

	var status *models.JobOrderStatus
	if s := c.Query("status"); s != "" {
		parsed := models.JobOrderStatus(s)
		status = &parsed
	}

	orders, err := h.jobOrders.List(status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_orders": dto.ToJobOrderDTOs(orders),
	})
}

func (h *JobOrderHandler) CreateJobOrder(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.CreateJobOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	order, err := h.jobOrders.Create(actor, services.CreateJobOrderInput{
		JobNumber:   req.JobNumber,
		JobName:     req.JobName,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToJobOrderDTO(*order))
}

func (h *JobOrderHandler) UpdateJobOrder(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "job order")
	if !ok {
		return
	}

	var req dto.UpdateJobOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BindingError(c, err)
		return
	}

	order, err := h.jobOrders.Update(actor, id, services.UpdateJobOrderInput{
		JobName:     req.JobName,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJobOrderDTO(*order))
}
