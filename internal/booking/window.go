// internal/booking/window.go
package booking

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// TimeWindow is a reservation slot on a single calendar day.
// Times have minute resolution and the window is half-open: End is excluded,
// so a window ending at 12:00 does not collide with one starting at 12:00.
type TimeWindow struct {
	Date  string `json:"booking_date"`
	Start string `json:"start_time"`
	End   string `json:"end_time"`
}

// parseMinutes converts a "15:04" string to minutes since midnight.
func parseMinutes(s string) (int, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Validate checks that the window is well formed: parseable date, parseable
// times, and a strictly positive duration.
func (w TimeWindow) Validate() error {
	if _, err := time.Parse(dateLayout, w.Date); err != nil {
		return &ValidationError{Field: "booking_date", Reason: "must be YYYY-MM-DD"}
	}
	start, err := parseMinutes(w.Start)
	if err != nil {
		return &ValidationError{Field: "start_time", Reason: "must be HH:MM"}
	}
	end, err := parseMinutes(w.End)
	if err != nil {
		return &ValidationError{Field: "end_time", Reason: "must be HH:MM"}
	}
	if start >= end {
		return &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	return nil
}

// DurationMinutes returns the window length in minutes. The window must have
// passed Validate.
func (w TimeWindow) DurationMinutes() int {
	start, _ := parseMinutes(w.Start)
	end, _ := parseMinutes(w.End)
	return end - start
}

// EndsAt returns the instant the window closes, in UTC.
func (w TimeWindow) EndsAt() time.Time {
	day, _ := time.Parse(dateLayout, w.Date)
	end, _ := parseMinutes(w.End)
	return day.Add(time.Duration(end) * time.Minute).UTC()
}

// Elapsed reports whether the window has fully passed at the given instant.
func (w TimeWindow) Elapsed(now time.Time) bool {
	return !now.Before(w.EndsAt())
}

// Overlaps implements the half-open interval test shared by the conflict
// detector and the store. Windows on different dates never overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	if w.Date != other.Date {
		return false
	}
	aStart, _ := parseMinutes(w.Start)
	aEnd, _ := parseMinutes(w.End)
	bStart, _ := parseMinutes(other.Start)
	bEnd, _ := parseMinutes(other.End)
	return aStart < bEnd && bStart < aEnd
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s %s-%s", w.Date, w.Start, w.End)
}
