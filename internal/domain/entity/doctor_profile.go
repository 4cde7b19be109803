package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile represents doctor-specific profile data. Identity itself is
// issued elsewhere; UserID is the caller-provided subject.
type DoctorProfile struct {
	UserID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName        string          `gorm:"type:varchar(255);not null" json:"full_name"`
	Specialization  string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"consultation_fee"`
	IsVerified      bool            `gorm:"not null;default:false" json:"is_verified"`

	// Per-doctor override of the daily appointment cap; nil falls back to
	// MAX_APPOINTMENTS_PER_DOCTOR_PER_DAY.
	MaxAppointmentsPerDay *int `json:"max_appointments_per_day,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Availabilities []DoctorAvailability `gorm:"foreignKey:DoctorID;references:UserID" json:"availabilities,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}
