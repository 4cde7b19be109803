package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

// AppointmentType classifies the visit
type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeFollowUp     AppointmentType = "follow_up"
	AppointmentTypeEmergency    AppointmentType = "emergency"
)

// Appointment represents a booked doctor/patient time slot.
// Queue numbers are unique per doctor per calendar day and immutable once
// assigned; cancellation leaves gaps rather than re-numbering.
type Appointment struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_doctor_start" json:"doctor_id"`
	StartTime   time.Time         `gorm:"not null;index:idx_appointments_doctor_start" json:"start_time"`
	EndTime     time.Time         `gorm:"not null" json:"end_time"`
	Type        AppointmentType   `gorm:"type:varchar(20);not null;default:'consultation'" json:"type"`
	Status      AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	QueueNumber int               `gorm:"not null" json:"queue_number"`
	Priority    int               `gorm:"not null;default:1" json:"priority"`
	Notes       string            `gorm:"type:text" json:"notes,omitempty"`

	RescheduleCount    int        `gorm:"not null;default:0" json:"reschedule_count"`
	CancellationReason *string    `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy        *uuid.UUID `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	ReminderSent       bool       `gorm:"not null;default:false" json:"reminder_sent"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient      PatientProfile `gorm:"foreignKey:PatientID;references:UserID" json:"patient,omitempty"`
	Doctor       DoctorProfile  `gorm:"foreignKey:DoctorID;references:UserID" json:"doctor,omitempty"`
	Prescription *Prescription  `gorm:"foreignKey:AppointmentID" json:"prescription,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsCancelled checks if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsCompleted checks if the appointment has been completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// IsTerminal reports whether no further transitions are allowed.
// Rescheduled appointments remain active and may still be cancelled or completed.
func (a *Appointment) IsTerminal() bool {
	return a.Status == AppointmentStatusCancelled || a.Status == AppointmentStatusCompleted
}

// Cancel marks the appointment cancelled with audit metadata
func (a *Appointment) Cancel(by uuid.UUID, reason string, at time.Time) {
	a.Status = AppointmentStatusCancelled
	a.CancelledAt = &at
	a.CancelledBy = &by
	if reason != "" {
		a.CancellationReason = &reason
	}
}

// Complete marks the appointment completed
func (a *Appointment) Complete() {
	a.Status = AppointmentStatusCompleted
}
