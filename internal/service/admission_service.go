package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-clinic-scheduling/internal/domain/entity"
	domainRepo "go-clinic-scheduling/internal/domain/repository"
	"go-clinic-scheduling/internal/rules"
	"go-clinic-scheduling/pkg/timewindow"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidDuration     = errors.New("appointment duration is outside the allowed bounds")
	ErrTooFarInAdvance     = errors.New("appointment is too far in advance")
	ErrInsufficientNotice  = errors.New("appointment does not meet the minimum booking notice")
	ErrPatientDailyLimit   = errors.New("patient has reached the daily appointment limit")
	ErrDoctorDailyLimit    = errors.New("doctor has reached the daily appointment limit")
	ErrDoctorUnavailable   = errors.New("doctor is not available on this day")
	ErrOutsideAvailability = errors.New("requested time is outside the doctor's availability")
	ErrSchedulingConflict  = errors.New("this time slot is already booked")
)

// AdmitParams is a proposed doctor/patient slot.
type AdmitParams struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Start     time.Time
	End       time.Time
	Type      entity.AppointmentType
	Notes     string
}

// AdmissionService runs the ordered admission checks and assigns queue
// numbers. Checks 1-4 are pure slot validation; checks 5-8 plus queue
// assignment and the insert run inside the per-(doctor, day) critical
// section so two concurrent admissions for overlapping ranges cannot both
// succeed.
type AdmissionService struct {
	log              *logrus.Logger
	rules            *rules.Store
	appointmentRepo  domainRepo.AppointmentRepository
	availabilityRepo domainRepo.AvailabilityRepository
	doctorRepo       domainRepo.DoctorProfileRepository
	locker           DoctorDayLocker

	now func() time.Time
}

func NewAdmissionService(
	log *logrus.Logger,
	rulesStore *rules.Store,
	appointmentRepo domainRepo.AppointmentRepository,
	availabilityRepo domainRepo.AvailabilityRepository,
	doctorRepo domainRepo.DoctorProfileRepository,
	locker DoctorDayLocker,
) *AdmissionService {
	return &AdmissionService{
		log:              log,
		rules:            rulesStore,
		appointmentRepo:  appointmentRepo,
		availabilityRepo: availabilityRepo,
		doctorRepo:       doctorRepo,
		locker:           locker,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Admit validates the proposed slot against the full check sequence,
// short-circuiting on the first failure, then assigns the next queue number
// and persists the appointment. The chain itself never mutates state; only
// the final insert does.
func (s *AdmissionService) Admit(ctx context.Context, params AdmitParams) (*entity.Appointment, error) {
	r := s.rules.Current()

	if err := s.validateSlot(r, params.Start, params.End, params.Type); err != nil {
		return nil, err
	}

	var created *entity.Appointment
	err := s.locker.WithDoctorDayLock(ctx, params.DoctorID, params.Start, func(lockCtx context.Context) error {
		if err := s.validateAgainstSchedule(lockCtx, r, params.DoctorID, params.PatientID, params.Start, params.End, nil); err != nil {
			return err
		}

		queueNumber, err := s.nextQueueNumber(lockCtx, params.DoctorID, params.Start)
		if err != nil {
			return err
		}

		appointment := &entity.Appointment{
			ID:          uuid.New(),
			PatientID:   params.PatientID,
			DoctorID:    params.DoctorID,
			StartTime:   params.Start.UTC(),
			EndTime:     params.End.UTC(),
			Type:        params.Type,
			Status:      entity.AppointmentStatusScheduled,
			QueueNumber: queueNumber,
			Priority:    s.priorityFor(r, params.Type),
			Notes:       params.Notes,
		}

		if err := s.appointmentRepo.Create(lockCtx, appointment); err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}

		created = appointment
		s.log.Infof("Appointment admitted: id=%s, doctor=%s, queue=%d", appointment.ID, appointment.DoctorID, queueNumber)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Reschedule re-runs the admission chain against the new slot, excluding the
// appointment itself from the overlap and daily-cap counts, then mutates the
// times in place. Moving to a different calendar day assigns a fresh queue
// number for that day; within the same day the original number is kept.
func (s *AdmissionService) Reschedule(ctx context.Context, appointment *entity.Appointment, newStart, newEnd time.Time) error {
	r := s.rules.Current()

	if err := s.validateSlot(r, newStart, newEnd, appointment.Type); err != nil {
		return err
	}

	return s.locker.WithDoctorDayLock(ctx, appointment.DoctorID, newStart, func(lockCtx context.Context) error {
		if err := s.validateAgainstSchedule(lockCtx, r, appointment.DoctorID, appointment.PatientID, newStart, newEnd, appointment); err != nil {
			return err
		}

		if !sameUTCDay(appointment.StartTime, newStart) {
			queueNumber, err := s.nextQueueNumber(lockCtx, appointment.DoctorID, newStart)
			if err != nil {
				return err
			}
			appointment.QueueNumber = queueNumber
		}

		appointment.StartTime = newStart.UTC()
		appointment.EndTime = newEnd.UTC()
		appointment.Status = entity.AppointmentStatusRescheduled
		appointment.RescheduleCount++
		appointment.ReminderSent = false

		if err := s.appointmentRepo.Update(lockCtx, appointment); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		s.log.Infof("Appointment rescheduled: id=%s, count=%d", appointment.ID, appointment.RescheduleCount)
		return nil
	})
}

// validateSlot runs checks 1-4: not-in-past, duration bounds, advance-booking
// limit, minimum notice. Emergency bookings skip the advance and notice
// checks when same-day emergencies are allowed.
func (s *AdmissionService) validateSlot(r *rules.Rules, start, end time.Time, appointmentType entity.AppointmentType) error {
	now := s.now()

	if start.Before(now) {
		return timewindow.ErrPastDatetime
	}

	minutes := timewindow.DurationMinutes(start, end)
	if minutes < float64(r.MinAppointmentDurationMinutes) || minutes > float64(r.MaxAppointmentDurationMinutes) {
		return ErrInvalidDuration
	}

	emergencyWaiver := appointmentType == entity.AppointmentTypeEmergency && r.AllowEmergencySameDay
	if !emergencyWaiver {
		daysAhead := int(startOfUTCDay(start).Sub(startOfUTCDay(now)).Hours() / 24)
		if daysAhead > r.MaxAdvanceBookingDays {
			return ErrTooFarInAdvance
		}

		if start.Sub(now).Hours() < float64(r.MinBookingNoticeHours) {
			return ErrInsufficientNotice
		}
	}

	return nil
}

// validateAgainstSchedule runs checks 5-8 against the store: daily caps,
// availability window, interval overlap. exclude, when non-nil, is the
// appointment being rescheduled; it is skipped in the overlap query and
// subtracted from the cap counts when it already sits on the target day.
func (s *AdmissionService) validateAgainstSchedule(
	ctx context.Context,
	r *rules.Rules,
	doctorID, patientID uuid.UUID,
	start, end time.Time,
	exclude *entity.Appointment,
) error {
	dayStart := startOfUTCDay(start)
	dayEnd := dayStart.Add(24 * time.Hour)

	patientCount, err := s.appointmentRepo.CountForPatientBetween(ctx, patientID, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("count patient appointments: %w", err)
	}
	if exclude != nil && sameUTCDay(exclude.StartTime, start) {
		patientCount--
	}
	if patientCount >= int64(r.MaxAppointmentsPerPatientPerDay) {
		return ErrPatientDailyLimit
	}

	doctorMax := r.MaxAppointmentsPerDoctorPerDay
	profile, err := s.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("load doctor profile: %w", err)
	}
	if profile != nil && profile.MaxAppointmentsPerDay != nil {
		doctorMax = *profile.MaxAppointmentsPerDay
	}

	doctorCount, err := s.appointmentRepo.CountForDoctorBetween(ctx, doctorID, dayStart, dayEnd)
	if err != nil {
		return fmt.Errorf("count doctor appointments: %w", err)
	}
	if exclude != nil && sameUTCDay(exclude.StartTime, start) {
		doctorCount--
	}
	if doctorCount >= int64(doctorMax) {
		return ErrDoctorDailyLimit
	}

	windows, err := s.availabilityRepo.FindForDoctorOnWeekday(ctx, doctorID, int(start.UTC().Weekday()))
	if err != nil {
		return fmt.Errorf("load doctor availability: %w", err)
	}
	if len(windows) == 0 {
		return ErrDoctorUnavailable
	}

	startHHMM := start.UTC().Format("15:04")
	endHHMM := end.UTC().Format("15:04")
	within := false
	for _, window := range windows {
		if window.Contains(startHHMM, endHHMM) {
			within = true
			break
		}
	}
	if !within {
		return ErrOutsideAvailability
	}

	excludeID := uuid.Nil
	if exclude != nil {
		excludeID = exclude.ID
	}
	conflict, err := s.appointmentRepo.FindOverlapping(ctx, doctorID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("check overlapping appointments: %w", err)
	}
	if conflict != nil {
		return ErrSchedulingConflict
	}

	return nil
}

// nextQueueNumber assigns the next per-doctor per-day ordinal. MAX+1 over all
// appointments on the date, cancelled included, so numbers are strictly
// increasing and never reused; cancellation leaves gaps.
func (s *AdmissionService) nextQueueNumber(ctx context.Context, doctorID uuid.UUID, start time.Time) (int, error) {
	dayStart := startOfUTCDay(start)
	max, err := s.appointmentRepo.MaxQueueNumber(ctx, doctorID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return 0, fmt.Errorf("max queue number: %w", err)
	}
	return max + 1, nil
}

// priorityFor is a display ordering attribute layered on top of the queue
// number, not a replacement for it: emergencies carry the configured
// priority (0 sorts first), everything else 1.
func (s *AdmissionService) priorityFor(r *rules.Rules, appointmentType entity.AppointmentType) int {
	if appointmentType == entity.AppointmentTypeEmergency {
		return r.EmergencyQueuePriority
	}
	return 1
}

func startOfUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func sameUTCDay(a, b time.Time) bool {
	return startOfUTCDay(a).Equal(startOfUTCDay(b))
}
