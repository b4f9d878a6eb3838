// server/internal/service/clock.go
package service

import "time"

// Clock returns "now" in the office time zone.
type Clock func() time.Time

// ClockIn returns a wall clock reading in loc.
func ClockIn(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
