package usecase

import (
	"context"
	"errors"
	"time"

	"go-clinic-scheduling/internal/converter"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/domain/event"
	"go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/rules"
	"go-clinic-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrAppointmentNotOwned  = errors.New("appointment does not belong to you")
	ErrAppointmentCancelled = errors.New("appointment is already cancelled")
	ErrAppointmentCompleted = errors.New("appointment is already completed")
	ErrDoctorNotFound       = errors.New("doctor not found")
	ErrDoctorNotVerified    = errors.New("doctor is not verified")
	ErrRescheduleLimit      = errors.New("reschedule limit reached for this appointment")
	ErrNotAppointmentDoctor = errors.New("only the attending doctor can complete this appointment")
	ErrUserNotInContext     = errors.New("user not found in context")
)

// Admitter runs the ordered admission checks and assigns queue numbers.
// Satisfied by service.AdmissionService.
type Admitter interface {
	Admit(ctx context.Context, params service.AdmitParams) (*entity.Appointment, error)
	Reschedule(ctx context.Context, appointment *entity.Appointment, newStart, newEnd time.Time) error
}

type AppointmentUsecase interface {
	Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, appointmentID uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.CancelAppointmentResponse, error)
	Reschedule(ctx context.Context, appointmentID uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
	Complete(ctx context.Context, appointmentID uuid.UUID) (*dto.CompleteAppointmentResponse, error)
	Get(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	rules           *rules.Store
	admission       Admitter
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorProfileRepository
	patientRepo     repository.PatientProfileRepository
	billingRepo     repository.BillingRepository
	events          event.Publisher
	audit           service.AuditService
}

func NewAppointmentUsecase(
	log *logrus.Logger,
	rulesStore *rules.Store,
	admission Admitter,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorProfileRepository,
	patientRepo repository.PatientProfileRepository,
	billingRepo repository.BillingRepository,
	events event.Publisher,
	audit service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		log:             log,
		rules:           rulesStore,
		admission:       admission,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		billingRepo:     billingRepo,
		events:          events,
		audit:           audit,
	}
}

// Book admits a new appointment for the logged-in patient.
//
// Flow:
// 1. Verify the doctor exists and is verified
// 2. Run the admission chain (validation + queue number, under the doctor-day lock)
// 3. Publish appointment.booked and write the audit trail
func (u *appointmentUsecase) Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	doctor, err := u.doctorRepo.FindByUserID(ctx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsVerified {
		return nil, ErrDoctorNotVerified
	}

	appointment, err := u.admission.Admit(ctx, service.AdmitParams{
		DoctorID:  req.DoctorID,
		PatientID: userID,
		Start:     req.StartTime,
		End:       req.EndTime,
		Type:      entity.AppointmentType(req.Type),
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}

	patient, err := u.patientRepo.FindByUserID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to load patient profile %s: %+v", userID, err)
	}
	if patient != nil {
		appointment.Patient = *patient
	}
	appointment.Doctor = *doctor

	u.publishEvent(ctx, event.TypeBooked, appointment)
	u.audit.Log(ctx, &userID, service.AuditActionAppointmentBooked, entity.JSON{
		"appointment_id": appointment.ID.String(),
		"doctor_id":      appointment.DoctorID.String(),
		"start_time":     appointment.StartTime.Format(time.RFC3339),
		"queue_number":   appointment.QueueNumber,
	})

	u.log.Infof("Appointment booked: id=%s, doctor=%s, queue=%d", appointment.ID, appointment.DoctorID, appointment.QueueNumber)
	return converter.AppointmentToResponse(appointment), nil
}

// Cancel marks the appointment cancelled. Cancellation always goes through;
// cancelling closer to the start than CANCELLATION_HOURS_BEFORE only sets an
// advisory flag in the response.
func (u *appointmentUsecase) Cancel(ctx context.Context, appointmentID uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.CancelAppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	appointment, err := u.findOwned(ctx, appointmentID, userID)
	if err != nil {
		return nil, err
	}

	if appointment.IsCancelled() {
		return nil, ErrAppointmentCancelled
	}
	if appointment.IsCompleted() {
		return nil, ErrAppointmentCompleted
	}

	now := time.Now().UTC()
	late := appointment.StartTime.Sub(now).Hours() < float64(u.rules.Current().CancellationHoursBefore)

	appointment.Cancel(userID, req.Reason, now)
	if err := u.appointmentRepo.Update(ctx, appointment); err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	u.publishEvent(ctx, event.TypeCancelled, appointment)
	u.audit.Log(ctx, &userID, service.AuditActionAppointmentCancelled, entity.JSON{
		"appointment_id":    appointment.ID.String(),
		"reason":            req.Reason,
		"late_cancellation": late,
	})

	u.log.Infof("Appointment cancelled: id=%s, late=%t", appointmentID, late)
	return &dto.CancelAppointmentResponse{
		Appointment:      converter.AppointmentToResponse(appointment),
		LateCancellation: late,
	}, nil
}

// Reschedule moves the appointment to a new slot. The new slot passes the
// full admission chain; the move is capped by MAX_RESCHEDULES_PER_APPOINTMENT.
func (u *appointmentUsecase) Reschedule(ctx context.Context, appointmentID uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	appointment, err := u.findOwned(ctx, appointmentID, userID)
	if err != nil {
		return nil, err
	}

	if appointment.IsCancelled() {
		return nil, ErrAppointmentCancelled
	}
	if appointment.IsCompleted() {
		return nil, ErrAppointmentCompleted
	}
	if appointment.RescheduleCount >= u.rules.Current().MaxReschedulesPerAppointment {
		return nil, ErrRescheduleLimit
	}

	if err := u.admission.Reschedule(ctx, appointment, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	u.publishEvent(ctx, event.TypeRescheduled, appointment)
	u.audit.Log(ctx, &userID, service.AuditActionAppointmentRescheduled, entity.JSON{
		"appointment_id":   appointment.ID.String(),
		"start_time":       appointment.StartTime.Format(time.RFC3339),
		"reschedule_count": appointment.RescheduleCount,
	})

	u.log.Infof("Appointment rescheduled: id=%s, count=%d", appointmentID, appointment.RescheduleCount)
	return converter.AppointmentToResponse(appointment), nil
}

// Complete closes the appointment and records a billing entry at the
// doctor's consultation fee. Only the attending doctor may complete.
func (u *appointmentUsecase) Complete(ctx context.Context, appointmentID uuid.UUID) (*dto.CompleteAppointmentResponse, error) {
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
	if appointment.IsCompleted() {
		return nil, ErrAppointmentCompleted
	}

	appointment.Complete()
	if err := u.appointmentRepo.Update(ctx, appointment); err != nil {
		u.log.Warnf("Failed to complete appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	response := &dto.CompleteAppointmentResponse{
		Appointment: converter.AppointmentToResponse(appointment),
	}

	doctor, err := u.doctorRepo.FindByUserID(ctx, appointment.DoctorID)
	if err != nil || doctor == nil {
		u.log.Warnf("Failed to load doctor %s for billing: %+v", appointment.DoctorID, err)
	} else {
		billing := &entity.Billing{
			ID:            uuid.New(),
			AppointmentID: appointment.ID,
			Amount:        doctor.ConsultationFee,
			Status:        entity.BillingStatusPending,
		}
		if err := u.billingRepo.Create(ctx, billing); err != nil {
			// The completion stands; billing is retried out of band.
			u.log.Errorf("Failed to create billing for appointment %s: %+v", appointment.ID, err)
		} else {
			response.Billing = converter.BillingToResponse(billing)
		}
	}

	u.audit.Log(ctx, &userID, service.AuditActionAppointmentCompleted, entity.JSON{
		"appointment_id": appointment.ID.String(),
	})

	u.log.Infof("Appointment completed: id=%s", appointmentID)
	return response, nil
}

// Get returns one appointment. Patients and doctors see their own; admins
// see everything.
func (u *appointmentUsecase) Get(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
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

	roleID, _ := middleware.GetRoleIDFromContext(ctx)
	if roleID != entity.RoleIDAdmin && appointment.PatientID != userID && appointment.DoctorID != userID {
		return nil, ErrAppointmentNotOwned
	}

	return converter.AppointmentToResponse(appointment), nil
}

// GetMyAppointments lists the caller's appointments, by role.
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	var (
		appointments []entity.Appointment
		err          error
	)
	if roleID, _ := middleware.GetRoleIDFromContext(ctx); roleID == entity.RoleIDDoctor {
		appointments, err = u.appointmentRepo.FindByDoctorID(ctx, userID)
	} else {
		appointments, err = u.appointmentRepo.FindByPatientID(ctx, userID)
	}
	if err != nil {
		u.log.Warnf("Failed to list appointments for %s: %+v", userID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// findOwned loads the appointment and verifies the caller is the booking
// patient (admins are also allowed through).
func (u *appointmentUsecase) findOwned(ctx context.Context, appointmentID, userID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if roleID, _ := middleware.GetRoleIDFromContext(ctx); roleID != entity.RoleIDAdmin && appointment.PatientID != userID {
		return nil, ErrAppointmentNotOwned
	}
	return appointment, nil
}

// publishEvent emits the domain event; delivery failures never fail the
// operation that produced them.
func (u *appointmentUsecase) publishEvent(ctx context.Context, eventType event.Type, appointment *entity.Appointment) {
	evt := event.AppointmentEvent{
		Type:          eventType,
		AppointmentID: appointment.ID,
		PatientName:   appointment.Patient.FullName,
		DoctorName:    appointment.Doctor.FullName,
		Date:          appointment.StartTime.Format("2006-01-02"),
		Time:          appointment.StartTime.Format("15:04"),
		QueueNumber:   appointment.QueueNumber,
	}
	if err := u.events.Publish(ctx, evt); err != nil {
		u.log.Warnf("Failed to publish %s event for appointment %s: %+v", eventType, appointment.ID, err)
	}
}
