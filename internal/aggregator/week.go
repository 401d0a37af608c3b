package aggregator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/types"
)

// DaysPerWeek is the length of every week window
const DaysPerWeek = 7

// ErrInvalidDirection is returned by ParseDirection for unknown values
var ErrInvalidDirection = errors.New("invalid week direction")

// Direction selects the neighbouring week
type Direction int

// Week directions
const (
	Previous Direction = -1 // the week before
	Next     Direction = 1  // the week after
)

// String returns the direction's path segment
func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// ParseDirection accepts "previous" (or "prev") and "next"
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "previous", "prev":
		return Previous, nil
	case "next":
		return Next, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// WeekWindow is a Monday-to-Sunday span identified by its Monday.
// Start is a calendar date at 00:00 UTC.
type WeekWindow struct {
	Start time.Time
}

// End returns the Sunday closing the window
func (w WeekWindow) End() time.Time {
	return w.Start.AddDate(0, 0, DaysPerWeek-1)
}

// Day returns the i-th date of the window, 0 being Monday
func (w WeekWindow) Day(i int) time.Time {
	return w.Start.AddDate(0, 0, i)
}

// String returns the Monday as YYYY-MM-DD
func (w WeekWindow) String() string {
	return w.Start.Format(types.DateLayout)
}

// MondayOf returns the window containing t's calendar date. It is meant for
// entry points only; navigation never re-anchors.
func MondayOf(t time.Time) WeekWindow {
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	back := (int(date.Weekday()) + 6) % 7 // Monday = 0
	return WeekWindow{Start: date.AddDate(0, 0, -back)}
}

// ParseWeek parses a YYYY-MM-DD date and returns its window
func ParseWeek(s string) (WeekWindow, error) {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		return WeekWindow{}, fmt.Errorf("invalid week date %q: %w", s, err)
	}
	return MondayOf(t), nil
}

// NavigateWeek shifts the window by exactly one week
func NavigateWeek(current WeekWindow, direction Direction) WeekWindow {
	return WeekWindow{Start: current.Start.AddDate(0, 0, int(direction)*DaysPerWeek)}
}

// Contains reports whether t's calendar date falls inside the window
func (w WeekWindow) Contains(t time.Time) bool {
	return MondayOf(t).Start.Equal(w.Start)
}
