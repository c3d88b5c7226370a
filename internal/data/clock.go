package data

import "time"

// Clock reports the time repositories stamp rows with.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time { return time.Now().UTC() }

// FixedClock always reports t, in UTC.
func FixedClock(t time.Time) Clock {
	t = t.UTC()
	return func() time.Time { return t }
}
