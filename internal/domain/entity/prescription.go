package entity

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is issued by the doctor for a single appointment.
// One-to-one: the unique index on AppointmentID enforces at most one per
// appointment. Cancelling the appointment does not delete a prescription
// already written.
type Prescription struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"appointment_id"`
	Medicines     string    `gorm:"type:text;not null" json:"medicines"`
	Instructions  string    `gorm:"type:text" json:"instructions,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}
