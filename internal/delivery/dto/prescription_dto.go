package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePrescriptionRequest struct {
	Medicines    string `json:"medicines" validate:"required,max=5000"`
	Instructions string `json:"instructions" validate:"max=5000"`
}

type PrescriptionResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Medicines     string    `json:"medicines"`
	Instructions  string    `json:"instructions,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
