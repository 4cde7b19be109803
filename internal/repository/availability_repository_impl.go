package repository

import (
	"context"
	"errors"

	"go-clinic-scheduling/internal/domain/entity"
	domainRepo "go-clinic-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type availabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) domainRepo.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) Create(ctx context.Context, window *entity.DoctorAvailability) error {
	return r.db.WithContext(ctx).Create(window).Error
}

func (r *availabilityRepository) Update(ctx context.Context, window *entity.DoctorAvailability) error {
	return r.db.WithContext(ctx).Save(window).Error
}

func (r *availabilityRepository) Delete(ctx context.Context, id int) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.DoctorAvailability{})
	return result.RowsAffected, result.Error
}

func (r *availabilityRepository) FindByID(ctx context.Context, id int) (*entity.DoctorAvailability, error) {
	var window entity.DoctorAvailability
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&window).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &window, nil
}

func (r *availabilityRepository) FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.DoctorAvailability, error) {
	var windows []entity.DoctorAvailability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("day_of_week ASC, start_time ASC").
		Find(&windows).Error
	if err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *availabilityRepository) FindForDoctorOnWeekday(ctx context.Context, doctorID uuid.UUID, weekday int) ([]entity.DoctorAvailability, error) {
	var windows []entity.DoctorAvailability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ? AND is_available = ?", doctorID, weekday, true).
		Order("start_time ASC").
		Find(&windows).Error
	if err != nil {
		return nil, err
	}
	return windows, nil
}
