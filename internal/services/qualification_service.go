package services

import (
	"errors"
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
	"gorm.io/gorm"
)

// QualificationService manages operator certifications.
type QualificationService struct {
	repo     repository.QualificationRepository
	userRepo repository.UserRepository
	files    FileStore
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewQualificationService(repo repository.QualificationRepository, userRepo repository.UserRepository, files FileStore, m *metrics.Metrics, log zerolog.Logger) *QualificationService {
	return &QualificationService{repo: repo, userRepo: userRepo, files: files, metrics: m, log: log}
}

type QualificationInput struct {
	OperatorID          *uint64
	QualificationType   *models.Method
	Level               *models.QualificationLevel
	CertificationNumber *string
	IssuingBody         *string
	IssueDate           *time.Time
	ExpiryDate          *time.Time
	Status              *models.QualificationStatus
	Notes               *string
}

type ListQualificationsInput struct {
	OperatorID        *uint64
	QualificationType *models.Method
}

// List restricts operators to their own qualifications.
func (s *QualificationService) List(actor policy.Actor, input ListQualificationsInput) ([]models.Qualification, error) {
	filter := repository.QualificationFilter{
		OperatorID:        input.OperatorID,
		QualificationType: input.QualificationType,
	}
	if !policy.CanActOnOthers(actor.Role, policy.ReadQualifications) {
		own := actor.ID
		filter.OperatorID = &own
	}

	items, err := s.repo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifications: %w", err)
	}
	return items, nil
}

func (s *QualificationService) Get(actor policy.Actor, id uint64) (*models.Qualification, error) {
	q, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrQualificationNotFound, "find qualification")
	}
	if !policy.Authorize(actor, policy.ReadQualifications, &policy.Target{OwnerID: q.OperatorID}) {
		return nil, ErrQualificationNotFound
	}
	return q, nil
}

// Create records a qualification. Admin only.
func (s *QualificationService) Create(actor policy.Actor, input QualificationInput) (*models.Qualification, error) {
	if !policy.Authorize(actor, policy.ManageQualifications, nil) {
		return nil, ErrForbidden
	}

	q := &models.Qualification{Status: models.QualificationActive}
	applyQualification(q, input)
	if err := s.validate(q, input.IssueDate == nil, input.ExpiryDate == nil); err != nil {
		return nil, err
	}

	if err := s.repo.Create(q); err != nil {
		return nil, fmt.Errorf("failed to create qualification: %w", err)
	}
	return q, nil
}

func (s *QualificationService) Update(actor policy.Actor, id uint64, input QualificationInput) (*models.Qualification, error) {
	if !policy.Authorize(actor, policy.ManageQualifications, nil) {
		return nil, ErrForbidden
	}

	q, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrQualificationNotFound, "find qualification")
	}

	applyQualification(q, input)
	if err := s.validate(q, false, false); err != nil {
		return nil, err
	}

	if err := s.repo.Update(q); err != nil {
		return nil, fmt.Errorf("failed to update qualification: %w", err)
	}
	return q, nil
}

// Delete removes a qualification and its certificate. Admin only.
func (s *QualificationService) Delete(actor policy.Actor, id uint64) error {
	if !policy.Authorize(actor, policy.ManageQualifications, nil) {
		return ErrForbidden
	}

	q, err := s.repo.FindByID(id)
	if err != nil {
		return notFound(err, ErrQualificationNotFound, "find qualification")
	}
	if err := s.repo.Delete(id); err != nil {
		return notFound(err, ErrQualificationNotFound, "delete qualification")
	}

	removeFiles(s.files, s.log, q.DocumentPath)
	return nil
}

// AttachDocument stores the certificate scan, replacing any previous one.
func (s *QualificationService) AttachDocument(actor policy.Actor, id uint64, header *multipart.FileHeader) (*models.Qualification, error) {
	if !policy.Authorize(actor, policy.ManageQualifications, nil) {
		return nil, ErrForbidden
	}
	if header == nil {
		return nil, invalidField(storage.FieldCertificate, "is required")
	}

	q, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrQualificationNotFound, "find qualification")
	}

	upd := &fileUpdate{store: s.files, metrics: s.metrics, log: s.log}
	name, err := upd.save(storage.FieldCertificate, header, q.DocumentPath)
	if err != nil {
		return nil, err
	}
	q.DocumentPath = name

	if err := s.repo.Update(q); err != nil {
		upd.rollback()
		return nil, fmt.Errorf("failed to update qualification: %w", err)
	}
	upd.commit()
	return q, nil
}

func applyQualification(q *models.Qualification, input QualificationInput) {
	if input.OperatorID != nil {
		q.OperatorID = *input.OperatorID
	}
	if input.QualificationType != nil {
		q.QualificationType = *input.QualificationType
	}
	if input.Level != nil {
		q.Level = *input.Level
	}
	if input.CertificationNumber != nil {
		q.CertificationNumber = strings.TrimSpace(*input.CertificationNumber)
	}
	if input.IssuingBody != nil {
		q.IssuingBody = strings.TrimSpace(*input.IssuingBody)
	}
	if input.IssueDate != nil {
		q.IssueDate = civilDate(*input.IssueDate)
	}
	if input.ExpiryDate != nil {
		q.ExpiryDate = civilDate(*input.ExpiryDate)
	}
	if input.Status != nil {
		q.Status = *input.Status
	}
	if input.Notes != nil {
		q.Notes = *input.Notes
	}
}

func (s *QualificationService) validate(q *models.Qualification, missingIssue, missingExpiry bool) error {
	var v fieldChecks
	v.check(q.QualificationType.Valid(), "qualification_type", "must be one of UT, MT, VT, PT, RT, ET, LT")
	v.check(q.Level.Valid(), "level", "must be one of Level 1, Level 2, Level 3")
	v.check(q.IssuingBody != "", "issuing_body", "is required")
	v.check(!missingIssue, "issue_date", "is required")
	v.check(!missingExpiry, "expiry_date", "is required")
	if !missingIssue && !missingExpiry {
		v.check(q.ExpiryDate.After(q.IssueDate), "expiry_date", "must be after issue_date")
	}
	v.check(q.Status.Valid(), "status", "must be one of active, expired, suspended")

	if q.OperatorID == 0 {
		v.check(false, "operator_id", "is required")
	} else {
		_, err := s.userRepo.FindByID(q.OperatorID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find operator: %w", err)
		}
		v.check(err == nil, "operator_id", "does not match a user")
	}
	return v.err()
}
