package repository

import (
	"context"
	"time"

	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentRepository contains all appointment store interactions needed by
// the admission chain and the lifecycle manager. Counting and overlap queries
// exclude cancelled appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	Update(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error)
	FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error)

	// Daily caps: appointments with start_time in [from, to), not cancelled.
	CountForPatientBetween(ctx context.Context, patientID uuid.UUID, from, to time.Time) (int64, error)
	CountForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) (int64, error)

	// FindOverlapping returns a non-cancelled appointment for the doctor whose
	// [start_time, end_time) intersects [start, end), or nil. excludeID is
	// skipped so a reschedule does not conflict with itself; pass uuid.Nil
	// otherwise.
	FindOverlapping(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (*entity.Appointment, error)

	// MaxQueueNumber returns the highest queue number assigned to the doctor
	// for start_time in [from, to), cancelled included so numbers are never
	// reused. Zero when none.
	MaxQueueNumber(ctx context.Context, doctorID uuid.UUID, from, to time.Time) (int, error)

	// Reminder sweep
	FindDueForReminder(ctx context.Context, from, to time.Time) ([]entity.Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}
