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

// EquipmentService manages inspection instruments and their calibration.
type EquipmentService struct {
	repo     repository.EquipmentRepository
	userRepo repository.UserRepository
	files    FileStore
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

func NewEquipmentService(repo repository.EquipmentRepository, userRepo repository.UserRepository, files FileStore, m *metrics.Metrics, log zerolog.Logger) *EquipmentService {
	return &EquipmentService{repo: repo, userRepo: userRepo, files: files, metrics: m, log: log}
}

type EquipmentInput struct {
	EquipmentType        *models.EquipmentType
	Brand                *string
	Model                *string
	InternalSerialNumber *string
	SerialNumber         *string
	CalibrationExpiry    *time.Time
	ClearCalibration     bool
	AssignedOperatorID   *uint64
	ClearAssignment      bool
	Status               *models.EquipmentStatus
}

type ListEquipmentInput struct {
	AssignedOperatorID *uint64
	EquipmentType      *models.EquipmentType
	Status             *models.EquipmentStatus
}

// List returns the actor's assigned equipment, or everything for roles that
// may read all equipment.
func (s *EquipmentService) List(actor policy.Actor, input ListEquipmentInput) ([]models.Equipment, error) {
	filter := repository.EquipmentFilter{
		AssignedOperatorID: input.AssignedOperatorID,
		EquipmentType:      input.EquipmentType,
		Status:             input.Status,
	}
	if !policy.Authorize(actor, policy.ReadAllEquipment, nil) {
		own := actor.ID
		filter.AssignedOperatorID = &own
	}

	items, err := s.repo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return items, nil
}

// Get hides equipment not assigned to an operator.
func (s *EquipmentService) Get(actor policy.Actor, id uint64) (*models.Equipment, error) {
	item, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrEquipmentNotFound, "find equipment")
	}
	if !policy.Authorize(actor, policy.ReadAllEquipment, nil) &&
		(item.AssignedOperatorID == nil || *item.AssignedOperatorID != actor.ID) {
		return nil, ErrEquipmentNotFound
	}
	return item, nil
}

func (s *EquipmentService) Create(actor policy.Actor, input EquipmentInput) (*models.Equipment, error) {
	if !policy.Authorize(actor, policy.ManageEquipment, nil) {
		return nil, ErrForbidden
	}

	item := &models.Equipment{Status: models.EquipmentActive}
	s.apply(item, input)
	if err := s.validate(item); err != nil {
		return nil, err
	}

	if err := s.repo.Create(item); err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}
	return s.repo.FindByID(item.ID)
}

func (s *EquipmentService) Update(actor policy.Actor, id uint64, input EquipmentInput) (*models.Equipment, error) {
	if !policy.Authorize(actor, policy.ManageEquipment, nil) {
		return nil, ErrForbidden
	}

	item, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrEquipmentNotFound, "find equipment")
	}

	s.apply(item, input)
	if err := s.validate(item); err != nil {
		return nil, err
	}

	if err := s.repo.Update(item); err != nil {
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}
	return s.repo.FindByID(item.ID)
}

// Delete removes the row, then its certificate and photo. Admin only.
func (s *EquipmentService) Delete(actor policy.Actor, id uint64) error {
	if !policy.Authorize(actor, policy.DeleteEquipment, nil) {
		return ErrForbidden
	}

	item, err := s.repo.FindByID(id)
	if err != nil {
		return notFound(err, ErrEquipmentNotFound, "find equipment")
	}
	if err := s.repo.Delete(id); err != nil {
		return notFound(err, ErrEquipmentNotFound, "delete equipment")
	}

	removeFiles(s.files, s.log, item.CalibrationCertificate, item.EquipmentPhoto)
	return nil
}

// AttachFiles stores a calibration certificate and/or photo. Either header may
// be nil.
func (s *EquipmentService) AttachFiles(actor policy.Actor, id uint64, certificate, photo *multipart.FileHeader) (*models.Equipment, error) {
	if !policy.Authorize(actor, policy.ManageEquipment, nil) {
		return nil, ErrForbidden
	}
	if certificate == nil && photo == nil {
		return nil, invalidField("file", "at least one file is required")
	}

	item, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrEquipmentNotFound, "find equipment")
	}

	upd := &fileUpdate{store: s.files, metrics: s.metrics, log: s.log}
	if certificate != nil {
		name, err := upd.save(storage.FieldCalibrationCertificate, certificate, item.CalibrationCertificate)
		if err != nil {
			upd.rollback()
			return nil, err
		}
		item.CalibrationCertificate = name
	}
	if photo != nil {
		name, err := upd.save(storage.FieldEquipmentPhoto, photo, item.EquipmentPhoto)
		if err != nil {
			upd.rollback()
			return nil, err
		}
		item.EquipmentPhoto = name
	}

	if err := s.repo.Update(item); err != nil {
		upd.rollback()
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}
	upd.commit()
	return item, nil
}

func (s *EquipmentService) apply(item *models.Equipment, input EquipmentInput) {
	if input.EquipmentType != nil {
		item.EquipmentType = *input.EquipmentType
	}
	if input.Brand != nil {
		item.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Model != nil {
		item.Model = strings.TrimSpace(*input.Model)
	}
	if input.InternalSerialNumber != nil {
		item.InternalSerialNumber = strings.TrimSpace(*input.InternalSerialNumber)
	}
	if input.SerialNumber != nil {
		item.SerialNumber = strings.TrimSpace(*input.SerialNumber)
	}
	if input.CalibrationExpiry != nil {
		d := civilDate(*input.CalibrationExpiry)
		item.CalibrationExpiry = &d
	}
	if input.ClearCalibration {
		item.CalibrationExpiry = nil
	}
	if input.AssignedOperatorID != nil {
		item.AssignedOperatorID = input.AssignedOperatorID
		item.AssignedOperator = nil
	}
	if input.ClearAssignment {
		item.AssignedOperatorID = nil
		item.AssignedOperator = nil
	}
	if input.Status != nil {
		item.Status = *input.Status
	}
}

func (s *EquipmentService) validate(item *models.Equipment) error {
	var v fieldChecks
	v.check(item.EquipmentType.Valid(), "equipment_type", "must be one of magnetic_yoke, ut_instrument, ut_probe, other")
	v.check(item.Brand != "", "brand", "is required")
	v.check(item.InternalSerialNumber != "", "internal_serial_number", "is required")
	v.check(item.Status.Valid(), "status", "must be one of active, maintenance, retired")
	if item.EquipmentType.Valid() {
		v.check(!item.EquipmentType.RequiresCalibration() || item.CalibrationExpiry != nil,
			"calibration_expiry", "is required for this equipment type")
	}
	if item.AssignedOperatorID != nil {
		_, err := s.userRepo.FindByID(*item.AssignedOperatorID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find operator: %w", err)
		}
		v.check(err == nil, "assigned_operator_id", "does not match a user")
	}
	return v.err()
}
