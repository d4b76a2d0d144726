package services

import (
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/ndt-worklog/internal/metrics"
	"github.com/yukikurage/ndt-worklog/internal/models"
	"github.com/yukikurage/ndt-worklog/internal/policy"
	"github.com/yukikurage/ndt-worklog/internal/repository"
	"github.com/yukikurage/ndt-worklog/internal/storage"
)

const defaultRevision = "Rev. 0"

// ProcedureService manages inspection procedures and their revisions.
type ProcedureService struct {
	repo    repository.ProcedureRepository
	files   FileStore
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func NewProcedureService(repo repository.ProcedureRepository, files FileStore, m *metrics.Metrics, log zerolog.Logger) *ProcedureService {
	return &ProcedureService{repo: repo, files: files, metrics: m, log: log, now: time.Now}
}

type ProcedureInput struct {
	JobNumber         *string
	ProcedureCode     *string
	ProcedureName     *string
	ProcedureType     *models.Method
	Revision          *string
	IsCurrentRevision *bool
	Description       *string
	Status            *models.ProcedureStatus
}

type ListProceduresInput struct {
	JobNumber         string
	ProcedureType     *models.Method
	Status            *models.ProcedureStatus
	IncludeSuperseded bool
}

// List shows operators the current revisions only. Other roles see superseded
// revisions when they ask for them.
func (s *ProcedureService) List(actor policy.Actor, input ListProceduresInput) ([]models.Procedure, error) {
	filter := repository.ProcedureFilter{
		JobNumber:     strings.TrimSpace(input.JobNumber),
		ProcedureType: input.ProcedureType,
		Status:        input.Status,
		CurrentOnly:   true,
	}
	if policy.Authorize(actor, policy.ViewSupersededProcedures, nil) {
		filter.CurrentOnly = !input.IncludeSuperseded
	}

	procedures, err := s.repo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list procedures: %w", err)
	}
	return procedures, nil
}

func (s *ProcedureService) Get(actor policy.Actor, id uint64) (*models.Procedure, error) {
	procedure, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrProcedureNotFound, "find procedure")
	}
	if !procedure.IsCurrentRevision && !policy.Authorize(actor, policy.ViewSupersededProcedures, nil) {
		return nil, ErrProcedureNotFound
	}
	return procedure, nil
}

// Create adds a procedure. New procedures are the current revision unless
// stated otherwise.
func (s *ProcedureService) Create(actor policy.Actor, input ProcedureInput) (*models.Procedure, error) {
	if !policy.Authorize(actor, policy.ManageProcedures, nil) {
		return nil, ErrForbidden
	}

	procedure := &models.Procedure{
		Revision:          defaultRevision,
		IsCurrentRevision: true,
		Status:            models.ProcedureDraft,
	}
	applyProcedure(procedure, input)
	if err := validateProcedure(procedure); err != nil {
		return nil, err
	}

	if err := s.repo.Create(procedure); err != nil {
		return nil, fmt.Errorf("failed to create procedure: %w", err)
	}
	return procedure, nil
}

func (s *ProcedureService) Update(actor policy.Actor, id uint64, input ProcedureInput) (*models.Procedure, error) {
	if !policy.Authorize(actor, policy.ManageProcedures, nil) {
		return nil, ErrForbidden
	}

	procedure, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrProcedureNotFound, "find procedure")
	}

	applyProcedure(procedure, input)
	if err := validateProcedure(procedure); err != nil {
		return nil, err
	}

	if err := s.repo.Update(procedure); err != nil {
		return nil, fmt.Errorf("failed to update procedure: %w", err)
	}
	return procedure, nil
}

// Approve marks a procedure approved by the actor.
func (s *ProcedureService) Approve(actor policy.Actor, id uint64) (*models.Procedure, error) {
	if !policy.Authorize(actor, policy.ManageProcedures, nil) {
		return nil, ErrForbidden
	}

	procedure, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrProcedureNotFound, "find procedure")
	}
	if procedure.Status == models.ProcedureSuperseded {
		return nil, invalidField("status", "superseded revisions cannot be approved")
	}

	approver := actor.ID
	approvedAt := s.now().UTC()
	procedure.Status = models.ProcedureApproved
	procedure.ApprovedByID = &approver
	procedure.ApprovedAt = &approvedAt
	procedure.ApprovedBy = nil

	if err := s.repo.Update(procedure); err != nil {
		return nil, fmt.Errorf("failed to approve procedure: %w", err)
	}
	return s.repo.FindByID(procedure.ID)
}

// Delete removes a procedure and its document. Admin only.
func (s *ProcedureService) Delete(actor policy.Actor, id uint64) error {
	if !policy.Authorize(actor, policy.DeleteProcedures, nil) {
		return ErrForbidden
	}

	procedure, err := s.repo.FindByID(id)
	if err != nil {
		return notFound(err, ErrProcedureNotFound, "find procedure")
	}
	if err := s.repo.Delete(id); err != nil {
		return notFound(err, ErrProcedureNotFound, "delete procedure")
	}

	removeFiles(s.files, s.log, procedure.DocumentPath)
	return nil
}

// AttachDocument stores the procedure document, replacing any previous one.
func (s *ProcedureService) AttachDocument(actor policy.Actor, id uint64, header *multipart.FileHeader) (*models.Procedure, error) {
	if !policy.Authorize(actor, policy.ManageProcedures, nil) {
		return nil, ErrForbidden
	}
	if header == nil {
		return nil, invalidField(storage.FieldDocument, "is required")
	}

	procedure, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrProcedureNotFound, "find procedure")
	}

	upd := &fileUpdate{store: s.files, metrics: s.metrics, log: s.log}
	name, err := upd.save(storage.FieldDocument, header, procedure.DocumentPath)
	if err != nil {
		return nil, err
	}
	procedure.DocumentPath = name

	if err := s.repo.Update(procedure); err != nil {
		upd.rollback()
		return nil, fmt.Errorf("failed to update procedure: %w", err)
	}
	upd.commit()
	return procedure, nil
}

func applyProcedure(p *models.Procedure, input ProcedureInput) {
	if input.JobNumber != nil {
		p.JobNumber = strings.TrimSpace(*input.JobNumber)
	}
	if input.ProcedureCode != nil {
		p.ProcedureCode = strings.TrimSpace(*input.ProcedureCode)
	}
	if input.ProcedureName != nil {
		p.ProcedureName = strings.TrimSpace(*input.ProcedureName)
	}
	if input.ProcedureType != nil {
		p.ProcedureType = *input.ProcedureType
	}
	if input.Revision != nil {
		p.Revision = strings.TrimSpace(*input.Revision)
		if p.Revision == "" {
			p.Revision = defaultRevision
		}
	}
	if input.IsCurrentRevision != nil {
		p.IsCurrentRevision = *input.IsCurrentRevision
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Status != nil {
		p.Status = *input.Status
	}
	// A superseded revision is never current.
	if p.Status == models.ProcedureSuperseded {
		p.IsCurrentRevision = false
	}
}

func validateProcedure(p *models.Procedure) error {
	var v fieldChecks
	v.check(p.JobNumber != "", "job_number", "is required")
	v.check(p.ProcedureCode != "", "procedure_code", "is required")
	v.check(p.ProcedureName != "", "procedure_name", "is required")
	v.check(p.ProcedureType.Valid(), "procedure_type", "must be one of UT, MT, VT, PT, RT, ET, LT")
	v.check(p.Status.Valid(), "status", "must be one of draft, approved, superseded")
	return v.err()
}
