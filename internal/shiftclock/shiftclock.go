// Package shiftclock computes elapsed on-shift time on a 24-hour circular clock.
//
// All offsets are seconds since local midnight in [0, 86399]. Callers are
// responsible for staying inside that domain; values outside it are not
// clamped and the results are undefined.
package shiftclock

import (
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/types"
)

const (
	// SecondsPerDay is the length of the circular clock
	SecondsPerDay = 86400

	// NightAxisCutoff is 06:00. Night shifts that start before it are drawn
	// on the extended 18:00 -> 30:00 axis.
	NightAxisCutoff = 6 * 3600
)

// Elapsed returns how long a shift that began at shiftStartOffset has been
// running at nowOffset. A start later in the day than now means the shift
// crossed midnight.
func Elapsed(shiftStartOffset, nowOffset int) int {
	raw := nowOffset - shiftStartOffset
	if raw < 0 {
		raw += SecondsPerDay
	}
	return raw
}

// DisplayAxisOffset places a shift start on a chart axis where night shifts
// beginning after midnight sort after those beginning before it. It is a
// presentation transform only and must not feed Elapsed.
func DisplayAxisOffset(shiftStartOffset int, isNightShift bool) int {
	if isNightShift && shiftStartOffset < NightAxisCutoff {
		return shiftStartOffset + SecondsPerDay
	}
	return shiftStartOffset
}

// SecondsOfDay converts a wall-clock reading into an offset in t's location
func SecondsOfDay(t time.Time) int {
	h, m, s := t.Clock()
	return h*3600 + m*60 + s
}

// Compute derives the elapsed time of every shift against a single clock
// reading. The result keeps the order of shifts.
func Compute(shifts []types.ShiftRecord, nowOffset int, takenAt time.Time) types.ClockSnapshot {
	entries := make([]types.ElapsedDuration, 0, len(shifts))
	for _, shift := range shifts {
		elapsed := Elapsed(shift.ShiftStartOffset, nowOffset)
		entries = append(entries, types.ElapsedDuration{
			DriverID:       shift.DriverID,
			ElapsedSeconds: elapsed,
			Formatted:      FormatElapsed(elapsed),
			IsNightShift:   shift.IsNightShift,
			AxisOffset:     DisplayAxisOffset(shift.ShiftStartOffset, shift.IsNightShift),
		})
	}

	return types.ClockSnapshot{
		Type:      types.MessageTypeShiftClock,
		NowOffset: nowOffset,
		TakenAt:   takenAt,
		Entries:   entries,
	}
}
