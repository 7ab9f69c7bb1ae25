package domain

import (
	"fmt"
	"time"
)

// SaleDayLayout is the calendar-date format used as the sale day key
// for both the price cache and the daily spend cap.
const SaleDayLayout = "2006-01-02"

// Clock resolves sale-day boundaries in one fixed reference timezone.
// UTC is authoritative unless the deployment configures another zone;
// the price cache and the limit guard must share the same Clock so
// their day boundaries never disagree.
type Clock struct {
	loc   *time.Location
	nowFn func() time.Time
}

// NewClock creates a clock for the given reference timezone.
// A nil location means UTC.
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, nowFn: time.Now}
}

// NewClockAt creates a clock with an injected now function, for tests
// and deterministic report generation.
func NewClockAt(loc *time.Location, nowFn func() time.Time) *Clock {
	c := NewClock(loc)
	if nowFn != nil {
		c.nowFn = nowFn
	}
	return c
}

// Now returns the current instant in the reference timezone.
func (c *Clock) Now() time.Time {
	return c.nowFn().In(c.loc)
}

// DayOf maps an instant to its sale day key.
func (c *Clock) DayOf(t time.Time) string {
	return t.In(c.loc).Format(SaleDayLayout)
}

// Today returns the current sale day key.
func (c *Clock) Today() string {
	return c.DayOf(c.Now())
}

// BoundsOf returns the half-open instant range [start, end) covered by
// a sale day key. DST transitions make some days shorter or longer than
// 24h, hence AddDate rather than a fixed duration.
func (c *Clock) BoundsOf(day string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(SaleDayLayout, day, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse sale day %q: %w", day, err)
	}
	return start, start.AddDate(0, 0, 1), nil
}

// Location returns the reference timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}
