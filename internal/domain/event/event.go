package event

import (
	"context"

	"github.com/google/uuid"
)

// Type identifies an appointment domain event.
type Type string

const (
	TypeBooked      Type = "appointment.booked"
	TypeCancelled   Type = "appointment.cancelled"
	TypeRescheduled Type = "appointment.rescheduled"
	TypeReminderDue Type = "appointment.reminder_due"
)

// AppointmentEvent is the payload handed to the notification collaborator.
// The notifier renders templates and delivers via WhatsApp/SMS; this service
// only produces the facts.
type AppointmentEvent struct {
	Type          Type      `json:"type"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	DoctorName    string    `json:"doctor_name"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	QueueNumber   int       `json:"queue_number"`
}

// Publisher emits appointment events for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt AppointmentEvent) error
}
