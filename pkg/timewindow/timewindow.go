package timewindow

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrInvalidTimeFormat = errors.New("invalid time format, use HH:MM")
	ErrTimeRangeOrder    = errors.New("end time must be after start time")
	ErrPastDatetime      = errors.New("cannot schedule appointments in the past")
)

// timeOfDayPattern accepts H:MM and HH:MM, hour 0-23, minute 0-59.
var timeOfDayPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a HH:MM clock string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if !timeOfDayPattern.MatchString(s) {
		return TimeOfDay{}, ErrInvalidTimeFormat
	}

	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, ErrInvalidTimeFormat
	}
	return t, nil
}

// String renders zero-padded HH:MM, the fixed-width form used for
// lexicographic window comparisons.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Seconds returns the offset from midnight in seconds.
func (t TimeOfDay) Seconds() int {
	return t.Hour*3600 + t.Minute*60
}

// ValidateRange checks both clock strings parse and that end is after start.
func ValidateRange(start, end string) error {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return err
	}
	if e.Seconds() <= s.Seconds() {
		return ErrTimeRangeOrder
	}
	return nil
}

// DurationHours returns the span between two clock strings in hours.
// Ordering is not re-checked here; a negative result is returned as-is
// when end precedes start. Callers validate ordering via ValidateRange.
func DurationHours(start, end string) (float64, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return 0, err
	}
	return float64(e.Seconds()-s.Seconds()) / 3600, nil
}

// DurationMinutes returns the span between two instants in minutes.
func DurationMinutes(start, end time.Time) float64 {
	return end.Sub(start).Minutes()
}

// ValidateNotPast fails when the instant is strictly before now (UTC).
func ValidateNotPast(t time.Time) error {
	if t.Before(time.Now().UTC()) {
		return ErrPastDatetime
	}
	return nil
}
