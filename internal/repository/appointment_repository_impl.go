package repository

import (
	"context"
	"errors"
	"time"

	"go-clinic-scheduling/internal/domain/entity"
	domainRepo "go-clinic-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	return r.db.WithContext(ctx).Omit("Patient", "Doctor", "Prescription").Save(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient").Preload("Doctor").Preload("Prescription").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("start_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Order("start_time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) CountForPatientBetween(ctx context.Context, patientID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("patient_id = ? AND start_time >= ? AND start_time < ? AND status != ?",
			patientID, from, to, entity.AppointmentStatusCancelled).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountForDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("doctor_id = ? AND start_time >= ? AND start_time < ? AND status != ?",
			doctorID, from, to, entity.AppointmentStatusCancelled).
		Count(&count).Error
	return count, err
}

// FindOverlapping uses the standard interval test: existing.start < end AND
// existing.end > start on the half-open [start, end).
func (r *appointmentRepository) FindOverlapping(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID uuid.UUID) (*entity.Appointment, error) {
	query := r.db.WithContext(ctx).
		Where("doctor_id = ? AND status != ? AND start_time < ? AND end_time > ?",
			doctorID, entity.AppointmentStatusCancelled, end, start)
	if excludeID != uuid.Nil {
		query = query.Where("id != ?", excludeID)
	}

	var appointment entity.Appointment
	err := query.First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) MaxQueueNumber(ctx context.Context, doctorID uuid.UUID, from, to time.Time) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Select("COALESCE(MAX(queue_number), 0)").
		Where("doctor_id = ? AND start_time >= ? AND start_time < ?", doctorID, from, to).
		Scan(&max).Error
	return max, err
}

func (r *appointmentRepository) FindDueForReminder(ctx context.Context, from, to time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Preload("Patient").Preload("Doctor").
		Where("status IN ? AND reminder_sent = ? AND start_time >= ? AND start_time < ?",
			[]entity.AppointmentStatus{entity.AppointmentStatusScheduled, entity.AppointmentStatusRescheduled},
			false, from, to).
		Order("start_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
}
