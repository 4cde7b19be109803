package rules

import (
	"errors"
	"testing"
)

func TestStore_Defaults(t *testing.T) {
	s := NewStore()
	r := s.Current()

	if r.MaxAppointmentsPerPatientPerDay != 3 {
		t.Errorf("MaxAppointmentsPerPatientPerDay = %d, want 3", r.MaxAppointmentsPerPatientPerDay)
	}
	if r.MaxAdvanceBookingDays != 90 {
		t.Errorf("MaxAdvanceBookingDays = %d, want 90", r.MaxAdvanceBookingDays)
	}
	if r.MaxReschedulesPerAppointment != 2 {
		t.Errorf("MaxReschedulesPerAppointment = %d, want 2", r.MaxReschedulesPerAppointment)
	}
	if !r.AllowEmergencySameDay {
		t.Error("AllowEmergencySameDay should default to true")
	}
}

func TestStore_UpdateByName(t *testing.T) {
	s := NewStore()

	updated, err := s.Update(MaxAdvanceBookingDays, 30)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.MaxAdvanceBookingDays != 30 {
		t.Errorf("MaxAdvanceBookingDays = %d, want 30", updated.MaxAdvanceBookingDays)
	}
	if s.Current().MaxAdvanceBookingDays != 30 {
		t.Error("Current() does not reflect the update")
	}

	// Other fields keep their values.
	if updated.MinBookingNoticeHours != 2 {
		t.Errorf("MinBookingNoticeHours changed unexpectedly: %d", updated.MinBookingNoticeHours)
	}
}

func TestStore_UpdateBool(t *testing.T) {
	s := NewStore()

	updated, err := s.Update(AllowEmergencySameDay, false)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.AllowEmergencySameDay {
		t.Error("AllowEmergencySameDay should be false after update")
	}

	if _, err := s.Update(AllowEmergencySameDay, 5); !errors.Is(err, ErrInvalidRuleValue) {
		t.Errorf("int value for bool rule: got %v, want ErrInvalidRuleValue", err)
	}
}

func TestStore_UpdateUnknownRule(t *testing.T) {
	s := NewStore()

	if _, err := s.Update("NO_SUCH_RULE", 1); !errors.Is(err, ErrUnknownRule) {
		t.Errorf("got %v, want ErrUnknownRule", err)
	}
}

func TestStore_UpdateCoercesJSONNumbers(t *testing.T) {
	s := NewStore()

	// encoding/json decodes numbers into float64.
	updated, err := s.Update(MinBookingNoticeHours, float64(6))
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.MinBookingNoticeHours != 6 {
		t.Errorf("MinBookingNoticeHours = %d, want 6", updated.MinBookingNoticeHours)
	}

	if _, err := s.Update(MinBookingNoticeHours, 2.5); !errors.Is(err, ErrInvalidRuleValue) {
		t.Errorf("fractional value: got %v, want ErrInvalidRuleValue", err)
	}
	if _, err := s.Update(MinBookingNoticeHours, "two"); !errors.Is(err, ErrInvalidRuleValue) {
		t.Errorf("string value: got %v, want ErrInvalidRuleValue", err)
	}
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := NewStore()
	before := s.Current()

	if _, err := s.Update(MaxAppointmentsPerPatientPerDay, 5); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	// A snapshot taken before the update is never mutated.
	if before.MaxAppointmentsPerPatientPerDay != 3 {
		t.Errorf("earlier snapshot mutated: %d", before.MaxAppointmentsPerPatientPerDay)
	}
}
