package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/cache"
	"github.com/dennisdiepolder/fleetpulse/internal/metrics"
	"github.com/dennisdiepolder/fleetpulse/internal/shiftclock"
	"github.com/dennisdiepolder/fleetpulse/internal/types"
	"github.com/rs/zerolog"
)

// Shift event types
const (
	TypeShiftStart = "shift_start"
	TypeShiftEnd   = "shift_end"
)

// ShiftEvent is a clock-in or clock-out reported by a driver app
type ShiftEvent struct {
	DriverID     string    `json:"driverId"`
	Type         string    `json:"type"`
	At           time.Time `json:"at"` // defaults to receipt time
	IsNightShift bool      `json:"isNightShift,omitempty"`
}

// Receiver applies shift events to the roster
type Receiver struct {
	roster         *cache.RosterStore
	clock          shiftclock.Clock
	logger         zerolog.Logger
	eventsReceived int64
	lastReceived   time.Time
	mu             sync.RWMutex
}

// NewReceiver creates a new event receiver
func NewReceiver(roster *cache.RosterStore, clock shiftclock.Clock, logger zerolog.Logger) *Receiver {
	return &Receiver{
		roster: roster,
		clock:  clock,
		logger: logger.With().Str("component", "event_receiver").Logger(),
	}
}

// HandleEvent starts or ends one driver's shift
// POST /internal/event
func (r *Receiver) HandleEvent(w http.ResponseWriter, req *http.Request) {
	m := metrics.Get()

	var event ShiftEvent
	if err := json.NewDecoder(req.Body).Decode(&event); err != nil {
		r.logger.Error().Err(err).Msg("failed to decode event")
		m.RecordShiftEventError()
		http.Error(w, "invalid event", http.StatusBadRequest)
		return
	}

	now := r.clock.Now()
	at := event.At
	if at.IsZero() {
		at = now
	}
	// offsets are taken on the configured wall clock
	at = at.In(now.Location())

	var err error
	switch event.Type {
	case TypeShiftStart:
		err = r.roster.StartShift(types.ShiftRecord{
			DriverID:         event.DriverID,
			ShiftStartOffset: shiftclock.SecondsOfDay(at),
			IsNightShift:     event.IsNightShift,
		})
	case TypeShiftEnd:
		_, err = r.roster.EndShift(event.DriverID)
	default:
		m.RecordShiftEventError()
		http.Error(w, "unknown event type", http.StatusBadRequest)
		return
	}

	if err != nil {
		m.RecordShiftEventError()
		if errors.Is(err, cache.ErrUnknownDriver) {
			http.Error(w, "unknown driver", http.StatusNotFound)
			return
		}
		r.logger.Error().Err(err).Str("driver_id", event.DriverID).Msg("failed to apply event")
		http.Error(w, "failed to apply event", http.StatusInternalServerError)
		return
	}

	m.RecordShiftEvent()

	atomic.AddInt64(&r.eventsReceived, 1)
	r.mu.Lock()
	r.lastReceived = now
	r.mu.Unlock()

	r.logger.Info().
		Str("driver_id", event.DriverID).
		Str("type", event.Type).
		Time("at", at).
		Msg("shift event applied")

	w.WriteHeader(http.StatusOK)
}

// GetStats returns receiver statistics
func (r *Receiver) GetStats(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	lastReceived := r.lastReceived
	r.mu.RUnlock()

	stats := map[string]interface{}{
		"events_received": atomic.LoadInt64(&r.eventsReceived),
		"last_received":   lastReceived,
		"active_shifts":   len(r.roster.Shifts()),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
