package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/policy"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"gorm.io/gorm"
)

// JobOrderService manages the job order registry.
type JobOrderService struct {
	repo repository.JobOrderRepository
}

func NewJobOrderService(repo repository.JobOrderRepository) *JobOrderService {
	return &JobOrderService{repo: repo}
}

type CreateJobOrderInput struct {
	JobNumber   string
	JobName     string
	Description string
	Status      models.JobOrderStatus
}

type UpdateJobOrderInput struct {
	JobName     *string
	Description *string
	Status      *models.JobOrderStatus
}

// List is open to every authenticated user.
func (s *JobOrderService) List(status *models.JobOrderStatus) ([]models.JobOrder, error) {
	if status != nil && !status.Valid() {
		return nil, invalidField("status", "must be one of active, completed, suspended")
	}
	orders, err := s.repo.List(status)
	if err != nil {
		return nil, fmt.Errorf("failed to list job orders: %w", err)
	}
	return orders, nil
}

func (s *JobOrderService) GetByNumber(jobNumber string) (*models.JobOrder, error) {
	order, err := s.repo.FindByNumber(jobNumber)
	if err != nil {
		return nil, notFound(err, ErrJobOrderNotFound, "find job order")
	}
	return order, nil
}

// Create registers a job order. Admin only.
func (s *JobOrderService) Create(actor policy.Actor, input CreateJobOrderInput) (*models.JobOrder, error) {
	if !policy.Authorize(actor, policy.ManageJobOrders, nil) {
		return nil, ErrForbidden
	}

	order := &models.JobOrder{
		JobNumber:   strings.TrimSpace(input.JobNumber),
		JobName:     strings.TrimSpace(input.JobName),
		Description: input.Description,
		Status:      input.Status,
	}
	if order.Status == "" {
		order.Status = models.JobOrderActive
	}
	if err := validateJobOrder(order); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByNumber(order.JobNumber); err == nil {
		return nil, ErrJobNumberTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check job number: %w", err)
	}

	if err := s.repo.Create(order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrJobNumberTaken
		}
		return nil, fmt.Errorf("failed to create job order: %w", err)
	}
	return order, nil
}

// Update changes a job order's name, description or status. Admin only.
func (s *JobOrderService) Update(actor policy.Actor, id uint64, input UpdateJobOrderInput) (*models.JobOrder, error) {
	if !policy.Authorize(actor, policy.ManageJobOrders, nil) {
		return nil, ErrForbidden
	}

	order, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrJobOrderNotFound, "find job order")
	}

	if input.JobName != nil {
		order.JobName = strings.TrimSpace(*input.JobName)
	}
	if input.Description != nil {
		order.Description = *input.Description
	}
	if input.Status != nil {
		order.Status = *input.Status
	}
	if err := validateJobOrder(order); err != nil {
		return nil, err
	}

	if err := s.repo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update job order: %w", err)
	}
	return order, nil
}

func validateJobOrder(order *models.JobOrder) error {
	var v fieldChecks
	v.check(order.JobNumber != "", "job_number", "is required")
	v.check(order.JobName != "", "job_name", "is required")
	v.check(order.Status.Valid(), "status", "must be one of active, completed, suspended")
	return v.err()
}
