package cache

import (
	"errors"
	"sync"

	"github.com/dennisdiepolder/fleetpulse/internal/types"
)

// ErrUnknownDriver is returned for shift changes of drivers not on the roster
var ErrUnknownDriver = errors.New("unknown driver")

// RosterStore holds the current drivers and their active shifts. The whole
// roster is replaced at once; readers always get a consistent copy.
type RosterStore struct {
	drivers []types.Driver
	shifts  []types.ShiftRecord
	byID    map[string]types.Driver
	version int64
	mu      sync.RWMutex
}

// NewRosterStore creates an empty roster store
func NewRosterStore() *RosterStore {
	return &RosterStore{
		byID: make(map[string]types.Driver),
	}
}

// Replace swaps in a new roster and returns its version
func (s *RosterStore) Replace(drivers []types.Driver, shifts []types.ShiftRecord) int64 {
	d := make([]types.Driver, len(drivers))
	copy(d, drivers)
	sh := make([]types.ShiftRecord, len(shifts))
	copy(sh, shifts)

	byID := make(map[string]types.Driver, len(d))
	for _, driver := range d {
		byID[driver.ID] = driver
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.drivers = d
	s.shifts = sh
	s.byID = byID
	s.version++
	return s.version
}

// StartShift puts a driver on shift, replacing any running shift. The
// version is left alone since reports depend on drivers, not shifts.
func (s *RosterStore) StartShift(shift types.ShiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[shift.DriverID]; !ok {
		return ErrUnknownDriver
	}

	shifts := make([]types.ShiftRecord, 0, len(s.shifts)+1)
	for _, existing := range s.shifts {
		if existing.DriverID != shift.DriverID {
			shifts = append(shifts, existing)
		}
	}
	s.shifts = append(shifts, shift)
	return nil
}

// EndShift takes a driver off shift and reports whether one was running
func (s *RosterStore) EndShift(driverID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[driverID]; !ok {
		return false, ErrUnknownDriver
	}

	shifts := make([]types.ShiftRecord, 0, len(s.shifts))
	ended := false
	for _, existing := range s.shifts {
		if existing.DriverID == driverID {
			ended = true
			continue
		}
		shifts = append(shifts, existing)
	}
	s.shifts = shifts
	return ended, nil
}

// Snapshot returns a copy of the current roster
func (s *RosterStore) Snapshot() types.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()

	drivers := make([]types.Driver, len(s.drivers))
	copy(drivers, s.drivers)
	shifts := make([]types.ShiftRecord, len(s.shifts))
	copy(shifts, s.shifts)

	return types.Roster{
		Version: s.version,
		Drivers: drivers,
		Shifts:  shifts,
	}
}

// Shifts returns a copy of the active shifts
func (s *RosterStore) Shifts() []types.ShiftRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shifts := make([]types.ShiftRecord, len(s.shifts))
	copy(shifts, s.shifts)
	return shifts
}

// Driver looks up a driver by ID
func (s *RosterStore) Driver(id string) (types.Driver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byID[id]
	return d, ok
}

// Version returns the version of the current roster
func (s *RosterStore) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Size returns the number of drivers
func (s *RosterStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drivers)
}
