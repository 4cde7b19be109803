package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoctorAvailability is a recurring weekly working window for a doctor.
// A doctor may hold several non-contiguous windows on the same weekday.
// DayOfWeek follows time.Weekday: 0=Sunday .. 6=Saturday.
type DoctorAvailability struct {
	ID           int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID     uuid.UUID `gorm:"type:uuid;not null;index:idx_availability_doctor_day" json:"doctor_id"`
	DayOfWeek    int       `gorm:"not null;index:idx_availability_doctor_day" json:"day_of_week"`
	StartTime    string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime      string    `gorm:"type:varchar(5);not null" json:"end_time"`
	SlotDuration int       `gorm:"not null;default:30" json:"slot_duration"`
	IsAvailable  bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DoctorAvailability) TableName() string {
	return "doctor_availabilities"
}

// Contains reports whether a slot given as zero-padded HH:MM strings lies
// within the window. Lexicographic comparison is sufficient on the
// fixed-width format.
func (w *DoctorAvailability) Contains(startHHMM, endHHMM string) bool {
	return startHHMM >= w.StartTime && endHHMM <= w.EndTime
}
