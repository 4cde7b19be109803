package repository

import (
	"context"

	"go-clinic-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

type AvailabilityRepository interface {
	Create(ctx context.Context, window *entity.DoctorAvailability) error
	Update(ctx context.Context, window *entity.DoctorAvailability) error
	Delete(ctx context.Context, id int) (int64, error)
	FindByID(ctx context.Context, id int) (*entity.DoctorAvailability, error)
	FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.DoctorAvailability, error)

	// FindForDoctorOnWeekday returns the doctor's windows for the weekday
	// where is_available is set. Read-only to the validator chain.
	FindForDoctorOnWeekday(ctx context.Context, doctorID uuid.UUID, weekday int) ([]entity.DoctorAvailability, error)
}
