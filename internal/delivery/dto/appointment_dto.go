package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Type      string    `json:"type" validate:"required,oneof=consultation follow_up emergency"`
	Notes     string    `json:"notes" validate:"max=1000"`
}

type RescheduleAppointmentRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                 uuid.UUID             `json:"id"`
	PatientID          uuid.UUID             `json:"patient_id"`
	DoctorID           uuid.UUID             `json:"doctor_id"`
	PatientName        string                `json:"patient_name,omitempty"`
	DoctorName         string                `json:"doctor_name,omitempty"`
	StartTime          time.Time             `json:"start_time"`
	EndTime            time.Time             `json:"end_time"`
	Type               string                `json:"type"`
	Status             string                `json:"status"`
	QueueNumber        int                   `json:"queue_number"`
	Priority           int                   `json:"priority"`
	Notes              string                `json:"notes,omitempty"`
	RescheduleCount    int                   `json:"reschedule_count"`
	CancellationReason *string               `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time            `json:"cancelled_at,omitempty"`
	Prescription       *PrescriptionResponse `json:"prescription,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

// CancelAppointmentResponse flags late cancellations so clients can surface
// the policy warning; the cancellation itself always goes through.
type CancelAppointmentResponse struct {
	Appointment      *AppointmentResponse `json:"appointment"`
	LateCancellation bool                 `json:"late_cancellation"`
}

type CompleteAppointmentResponse struct {
	Appointment *AppointmentResponse `json:"appointment"`
	Billing     *BillingResponse     `json:"billing,omitempty"`
}

type BillingResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
