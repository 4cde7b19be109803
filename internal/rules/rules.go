package rules

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spf13/viper"
)

var (
	ErrUnknownRule      = errors.New("unknown business rule")
	ErrInvalidRuleValue = errors.New("invalid business rule value")
)

// Recognized rule names, as exposed through the admin API and env overrides.
const (
	MaxAppointmentsPerPatientPerDay = "MAX_APPOINTMENTS_PER_PATIENT_PER_DAY"
	MaxAppointmentsPerDoctorPerDay  = "MAX_APPOINTMENTS_PER_DOCTOR_PER_DAY"
	MaxAdvanceBookingDays           = "MAX_ADVANCE_BOOKING_DAYS"
	MinBookingNoticeHours           = "MIN_BOOKING_NOTICE_HOURS"
	MinAppointmentDurationMinutes   = "MIN_APPOINTMENT_DURATION_MINUTES"
	MaxAppointmentDurationMinutes   = "MAX_APPOINTMENT_DURATION_MINUTES"
	CancellationHoursBefore         = "CANCELLATION_HOURS_BEFORE"
	MaxReschedulesPerAppointment    = "MAX_RESCHEDULES_PER_APPOINTMENT"
	MaxWorkingHoursPerDay           = "MAX_WORKING_HOURS_PER_DAY"
	DefaultSlotDurationMinutes      = "DEFAULT_SLOT_DURATION_MINUTES"
	EmergencyQueuePriority          = "EMERGENCY_QUEUE_PRIORITY"
	AllowEmergencySameDay           = "ALLOW_EMERGENCY_SAME_DAY"
)

// Rules is an immutable snapshot of the scheduling limits. Validators read a
// snapshot once per call; updates swap in a fresh copy and never mutate one
// that has been handed out.
type Rules struct {
	MaxAppointmentsPerPatientPerDay int  `json:"MAX_APPOINTMENTS_PER_PATIENT_PER_DAY"`
	MaxAppointmentsPerDoctorPerDay  int  `json:"MAX_APPOINTMENTS_PER_DOCTOR_PER_DAY"`
	MaxAdvanceBookingDays           int  `json:"MAX_ADVANCE_BOOKING_DAYS"`
	MinBookingNoticeHours           int  `json:"MIN_BOOKING_NOTICE_HOURS"`
	MinAppointmentDurationMinutes   int  `json:"MIN_APPOINTMENT_DURATION_MINUTES"`
	MaxAppointmentDurationMinutes   int  `json:"MAX_APPOINTMENT_DURATION_MINUTES"`
	CancellationHoursBefore         int  `json:"CANCELLATION_HOURS_BEFORE"`
	MaxReschedulesPerAppointment    int  `json:"MAX_RESCHEDULES_PER_APPOINTMENT"`
	MaxWorkingHoursPerDay           int  `json:"MAX_WORKING_HOURS_PER_DAY"`
	DefaultSlotDurationMinutes      int  `json:"DEFAULT_SLOT_DURATION_MINUTES"`
	EmergencyQueuePriority          int  `json:"EMERGENCY_QUEUE_PRIORITY"`
	AllowEmergencySameDay           bool `json:"ALLOW_EMERGENCY_SAME_DAY"`
}

// Defaults returns the built-in rule values.
func Defaults() Rules {
	return Rules{
		MaxAppointmentsPerPatientPerDay: 3,
		MaxAppointmentsPerDoctorPerDay:  20,
		MaxAdvanceBookingDays:           90,
		MinBookingNoticeHours:           2,
		MinAppointmentDurationMinutes:   15,
		MaxAppointmentDurationMinutes:   120,
		CancellationHoursBefore:         24,
		MaxReschedulesPerAppointment:    2,
		MaxWorkingHoursPerDay:           12,
		DefaultSlotDurationMinutes:      30,
		EmergencyQueuePriority:          0,
		AllowEmergencySameDay:           true,
	}
}

// Store holds the current rules snapshot. Reads are lock-free; updates are
// serialized through a mutex and publish a new snapshot atomically, so a
// validator chain mid-flight keeps seeing the snapshot it started with.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Rules]
}

func NewStore() *Store {
	s := &Store{}
	defaults := Defaults()
	s.current.Store(&defaults)
	return s
}

// Current returns the active snapshot.
func (s *Store) Current() *Rules {
	return s.current.Load()
}

// Update sets a single rule by name and publishes a new snapshot.
// Returns ErrUnknownRule for unrecognized names.
func (s *Store) Update(name string, value interface{}) (*Rules, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.current.Load()
	if err := next.set(name, value); err != nil {
		return nil, err
	}

	s.current.Store(&next)
	return &next, nil
}

// ApplyEnvOverrides reads RULE_<NAME> keys through viper so deployments can
// override defaults without an admin call. Unset keys keep their defaults.
func (s *Store) ApplyEnvOverrides() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.current.Load()
	for _, name := range []string{
		MaxAppointmentsPerPatientPerDay,
		MaxAppointmentsPerDoctorPerDay,
		MaxAdvanceBookingDays,
		MinBookingNoticeHours,
		MinAppointmentDurationMinutes,
		MaxAppointmentDurationMinutes,
		CancellationHoursBefore,
		MaxReschedulesPerAppointment,
		MaxWorkingHoursPerDay,
		DefaultSlotDurationMinutes,
		EmergencyQueuePriority,
	} {
		key := "RULE_" + name
		if viper.IsSet(key) {
			_ = next.set(name, viper.GetInt(key))
		}
	}
	if key := "RULE_" + AllowEmergencySameDay; viper.IsSet(key) {
		_ = next.set(AllowEmergencySameDay, viper.GetBool(key))
	}

	s.current.Store(&next)
}

func (r *Rules) set(name string, value interface{}) error {
	if name == AllowEmergencySameDay {
		b, err := toBool(value)
		if err != nil {
			return err
		}
		r.AllowEmergencySameDay = b
		return nil
	}

	n, err := toInt(value)
	if err != nil {
		return err
	}

	switch name {
	case MaxAppointmentsPerPatientPerDay:
		r.MaxAppointmentsPerPatientPerDay = n
	case MaxAppointmentsPerDoctorPerDay:
		r.MaxAppointmentsPerDoctorPerDay = n
	case MaxAdvanceBookingDays:
		r.MaxAdvanceBookingDays = n
	case MinBookingNoticeHours:
		r.MinBookingNoticeHours = n
	case MinAppointmentDurationMinutes:
		r.MinAppointmentDurationMinutes = n
	case MaxAppointmentDurationMinutes:
		r.MaxAppointmentDurationMinutes = n
	case CancellationHoursBefore:
		r.CancellationHoursBefore = n
	case MaxReschedulesPerAppointment:
		r.MaxReschedulesPerAppointment = n
	case MaxWorkingHoursPerDay:
		r.MaxWorkingHoursPerDay = n
	case DefaultSlotDurationMinutes:
		r.DefaultSlotDurationMinutes = n
	case EmergencyQueuePriority:
		r.EmergencyQueuePriority = n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownRule, name)
	}
	return nil
}

// toInt coerces JSON-decoded numbers. encoding/json hands numeric values to
// interface{} as float64.
func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, ErrInvalidRuleValue
		}
		return int(v), nil
	default:
		return 0, ErrInvalidRuleValue
	}
}

func toBool(value interface{}) (bool, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return false, ErrInvalidRuleValue
}
