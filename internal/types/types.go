package types

import "time"

// Driver is an immutable roster entry
type Driver struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ShiftRecord describes an active shift. ShiftStartOffset is seconds since
// local midnight and is always in [0, 86399].
type ShiftRecord struct {
	DriverID         string `json:"driverId"`
	ShiftStartOffset int    `json:"shiftStartOffset"`
	IsNightShift     bool   `json:"isNightShift"`
}

// AlertSeverity represents the severity of a shift alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// ShiftAlert represents an alert condition on a running shift
type ShiftAlert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// ElapsedDuration is the derived on-shift time of one driver for one tick
type ElapsedDuration struct {
	DriverID       string       `json:"driverId"`
	ElapsedSeconds int          `json:"elapsedSeconds"`
	Formatted      string       `json:"formatted"`    // HH:MM:SS
	IsNightShift   bool         `json:"isNightShift"` // copied from the shift record
	AxisOffset     int          `json:"axisOffset"`   // chart axis position, seconds
	Alerts         []ShiftAlert `json:"alerts,omitempty"`
}

// ClockSnapshot is the full result set of one tick. Every entry was computed
// against the same NowOffset.
type ClockSnapshot struct {
	Type      string            `json:"type"` // always "shift_clock"
	NowOffset int               `json:"nowOffset"`
	TakenAt   time.Time         `json:"takenAt"`
	Entries   []ElapsedDuration `json:"entries"`
}

// MessageTypeShiftClock is the type tag of clock snapshots on the wire
const MessageTypeShiftClock = "shift_clock"

// Roster is the read-only input of one tick
type Roster struct {
	Version int64         `json:"version"`
	Drivers []Driver      `json:"drivers"`
	Shifts  []ShiftRecord `json:"shifts"`
}
