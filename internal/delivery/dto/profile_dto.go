package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateDoctorProfileRequest struct {
	FullName              string `json:"full_name" validate:"required,max=255"`
	Specialization        string `json:"specialization" validate:"required,max=100"`
	ConsultationFee       string `json:"consultation_fee" validate:"omitempty"`
	MaxAppointmentsPerDay *int   `json:"max_appointments_per_day" validate:"omitempty,min=1"`
}

type CreatePatientProfileRequest struct {
	FullName    string `json:"full_name" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// Response DTOs

type DoctorProfileResponse struct {
	UserID                uuid.UUID `json:"user_id"`
	FullName              string    `json:"full_name"`
	Specialization        string    `json:"specialization"`
	ConsultationFee       string    `json:"consultation_fee"`
	IsVerified            bool      `json:"is_verified"`
	MaxAppointmentsPerDay *int      `json:"max_appointments_per_day,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

type PatientProfileResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
