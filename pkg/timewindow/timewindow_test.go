package timewindow

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay_Valid(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
	}{
		{"09:30", 9, 30},
		{"9:30", 9, 30},
		{"00:00", 0, 0},
		{"23:59", 23, 59},
		{"14:00", 14, 0},
	}

	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q) returned error: %v", c.in, err)
			continue
		}
		if got.Hour != c.hour || got.Minute != c.minute {
			t.Errorf("ParseTimeOfDay(%q) = %d:%d, want %d:%d", c.in, got.Hour, got.Minute, c.hour, c.minute)
		}
	}
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	cases := []string{"24:00", "12:60", "12", "12:5", "ab:cd", "", "12:345", "-1:00", "12:00:00"}

	for _, c := range cases {
		if _, err := ParseTimeOfDay(c); !errors.Is(err, ErrInvalidTimeFormat) {
			t.Errorf("ParseTimeOfDay(%q) = %v, want ErrInvalidTimeFormat", c, err)
		}
	}
}

func TestTimeOfDay_String_ZeroPads(t *testing.T) {
	got, err := ParseTimeOfDay("9:05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "09:05" {
		t.Errorf("String() = %q, want 09:05", got.String())
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange("09:00", "17:00"); err != nil {
		t.Errorf("valid range rejected: %v", err)
	}
	if err := ValidateRange("17:00", "09:00"); !errors.Is(err, ErrTimeRangeOrder) {
		t.Errorf("reversed range: got %v, want ErrTimeRangeOrder", err)
	}
	if err := ValidateRange("10:00", "10:00"); !errors.Is(err, ErrTimeRangeOrder) {
		t.Errorf("equal range: got %v, want ErrTimeRangeOrder", err)
	}
	if err := ValidateRange("bad", "17:00"); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("bad start: got %v, want ErrInvalidTimeFormat", err)
	}
	if err := ValidateRange("09:00", "25:00"); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("bad end: got %v, want ErrInvalidTimeFormat", err)
	}
}

func TestDurationHours(t *testing.T) {
	got, err := DurationHours("09:00", "17:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 8.5 {
		t.Errorf("DurationHours = %v, want 8.5", got)
	}

	// Ordering is not re-checked; negative durations are returned as-is.
	got, err = DurationHours("17:00", "09:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -8 {
		t.Errorf("DurationHours reversed = %v, want -8", got)
	}
}

func TestValidateNotPast(t *testing.T) {
	if err := ValidateNotPast(time.Now().UTC().Add(time.Hour)); err != nil {
		t.Errorf("future instant rejected: %v", err)
	}
	if err := ValidateNotPast(time.Now().UTC().Add(-30 * time.Minute)); !errors.Is(err, ErrPastDatetime) {
		t.Errorf("past instant: got %v, want ErrPastDatetime", err)
	}
}
