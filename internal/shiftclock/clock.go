package shiftclock

import "time"

// Clock supplies the current wall-clock time
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time in a fixed location
type RealClock struct {
	Location *time.Location
}

// NewRealClock creates a RealClock; a nil location means time.Local
func NewRealClock(loc *time.Location) RealClock {
	if loc == nil {
		loc = time.Local
	}
	return RealClock{Location: loc}
}

// Now returns the current time in the clock's location
func (c RealClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns T
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time
func (c FixedClock) Now() time.Time {
	return c.T
}
