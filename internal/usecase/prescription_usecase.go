package usecase

import (
	"context"
	"errors"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrPrescriptionExists   = errors.New("appointment already has a prescription")
	ErrPrescriptionNotFound = errors.New("prescription not found")
)

type PrescriptionUsecase interface {
	Create(ctx context.Context, appointmentID uuid.UUID, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.PrescriptionResponse, error)
}

type prescriptionUsecase struct {
	log              *logrus.Logger
	prescriptionRepo repository.PrescriptionRepository
	appointmentRepo  repository.AppointmentRepository
	audit            service.AuditService
}

func NewPrescriptionUsecase(
	log *logrus.Logger,
	prescriptionRepo repository.PrescriptionRepository,
	appointmentRepo repository.AppointmentRepository,
	audit service.AuditService,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		log:              log,
		prescriptionRepo: prescriptionRepo,
		appointmentRepo:  appointmentRepo,
		audit:            audit,
	}
}

// Create issues a prescription for the appointment. Only the attending
// doctor may issue one, the appointment must not be cancelled, and at most
// one prescription exists per appointment.
func (u *prescriptionUsecase) Create(ctx context.Context, appointmentID uuid.UUID, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.DoctorID != userID {
		return nil, ErrNotAppointmentDoctor
	}
	if appointment.IsCancelled() {
		return nil, ErrAppointmentCancelled
	}

	existing, err := u.prescriptionRepo.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPrescriptionExists
	}

	prescription := &entity.Prescription{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		Medicines:     req.Medicines,
		Instructions:  req.Instructions,
	}
	if err := u.prescriptionRepo.Create(ctx, prescription); err != nil {
		u.log.Warnf("Failed to create prescription for appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	u.audit.Log(ctx, &userID, service.AuditActionPrescriptionIssued, entity.JSON{
		"appointment_id":  appointmentID.String(),
		"prescription_id": prescription.ID.String(),
	})

	u.log.Infof("Prescription issued: appointment=%s", appointmentID)
	return converter.PrescriptionToResponse(prescription), nil
}

// GetByAppointment returns the appointment's prescription. Visible to the
// booking patient, the attending doctor, and admins.
func (u *prescriptionUsecase) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.PrescriptionResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	roleID, _ := middleware.GetRoleIDFromContext(ctx)
	if roleID != entity.RoleIDAdmin && appointment.PatientID != userID && appointment.DoctorID != userID {
		return nil, ErrAppointmentNotOwned
	}

	prescription, err := u.prescriptionRepo.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}

	return converter.PrescriptionToResponse(prescription), nil
}
