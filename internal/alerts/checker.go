package alerts

import (
	"fmt"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/shiftclock"
	"github.com/dennisdiepolder/fleetpulse/internal/types"
)

// Thresholds configures when a running shift raises an alert
type Thresholds struct {
	Warning  time.Duration
	Critical time.Duration
}

// DefaultThresholds flags shifts past 10h and 12h
var DefaultThresholds = Thresholds{
	Warning:  10 * time.Hour,
	Critical: 12 * time.Hour,
}

// CheckShiftAlerts evaluates long-shift rules for a slice of entries,
// mutating each entry's Alerts field in place. It returns the number of
// entries carrying an alert.
func CheckShiftAlerts(entries []types.ElapsedDuration, th Thresholds) int {
	flagged := 0
	for i := range entries {
		entries[i].Alerts = nil

		dur := time.Duration(entries[i].ElapsedSeconds) * time.Second
		switch {
		case th.Critical > 0 && dur > th.Critical:
			entries[i].Alerts = append(entries[i].Alerts, types.ShiftAlert{
				Rule:     "shift_too_long",
				Severity: types.SeverityCritical,
				Message:  fmt.Sprintf("On shift for %s", shiftclock.FormatShort(dur)),
			})
		case th.Warning > 0 && dur > th.Warning:
			entries[i].Alerts = append(entries[i].Alerts, types.ShiftAlert{
				Rule:     "shift_long",
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("On shift for %s", shiftclock.FormatShort(dur)),
			})
		}

		if len(entries[i].Alerts) > 0 {
			flagged++
		}
	}
	return flagged
}
