package shiftclock

import (
	"fmt"
	"time"
)

// FormatElapsed renders seconds as HH:MM:SS
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatShort renders a duration the way alert messages show it, e.g. 11h05m
// or 42m10s
func FormatShort(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if mins >= 60 {
		return fmt.Sprintf("%dh%02dm", mins/60, mins%60)
	}
	return fmt.Sprintf("%dm%02ds", mins, secs)
}

// FormatDisplayDate renders the short chart label of a calendar day
func FormatDisplayDate(date time.Time) string {
	return date.Format("Mon 02.01")
}
