package ticker

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/alerts"
	"github.com/dennisdiepolder/fleetpulse/internal/metrics"
	"github.com/dennisdiepolder/fleetpulse/internal/shiftclock"
	"github.com/dennisdiepolder/fleetpulse/internal/types"
	"github.com/rs/zerolog"
)

// RosterSource supplies the active shifts for one tick
type RosterSource interface {
	Shifts() []types.ShiftRecord
}

// Broadcaster fans a message out to connected dashboards
type Broadcaster interface {
	Broadcast(message []byte)
	ClientCount() int
}

// ShiftTicker recomputes every driver's elapsed shift time on a fixed
// interval and pushes the result to the hub
type ShiftTicker struct {
	roster     RosterSource
	clock      shiftclock.Clock
	hub        Broadcaster
	interval   time.Duration
	thresholds alerts.Thresholds
	logger     zerolog.Logger

	latest atomic.Pointer[types.ClockSnapshot]
}

// NewShiftTicker creates a new ShiftTicker. hub may be nil.
func NewShiftTicker(roster RosterSource, clock shiftclock.Clock, hub Broadcaster, interval time.Duration, thresholds alerts.Thresholds, logger zerolog.Logger) *ShiftTicker {
	return &ShiftTicker{
		roster:     roster,
		clock:      clock,
		hub:        hub,
		interval:   interval,
		thresholds: thresholds,
		logger:     logger.With().Str("component", "shift_ticker").Logger(),
	}
}

// Start runs one tick immediately and then one per interval until ctx is
// cancelled. Ticks run on the calling goroutine, so none fires after Start
// returns.
func (t *ShiftTicker) Start(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.logger.Info().Dur("interval", t.interval).Msg("ticker started")

	t.Tick(t.clock.Now())

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("ticker stopped")
			return

		case <-ticker.C:
			// ticker.C and ctx.Done can be ready together
			if ctx.Err() != nil {
				t.logger.Info().Msg("ticker stopped")
				return
			}
			t.Tick(t.clock.Now())
		}
	}
}

// Tick computes and publishes the snapshot for now. Calling it twice with the
// same wall-clock second and an unchanged roster yields equal snapshots.
func (t *ShiftTicker) Tick(now time.Time) types.ClockSnapshot {
	start := time.Now()

	shifts := t.roster.Shifts()
	nowOffset := shiftclock.SecondsOfDay(now)

	snap := shiftclock.Compute(shifts, nowOffset, now.Truncate(time.Second))
	flagged := alerts.CheckShiftAlerts(snap.Entries, t.thresholds)

	t.latest.Store(&snap)

	nights := 0
	for _, s := range shifts {
		if s.IsNightShift {
			nights++
		}
	}
	metrics.Get().RecordTick(time.Since(start), len(shifts), nights, flagged)

	if t.hub != nil {
		data, err := json.Marshal(snap)
		if err != nil {
			t.logger.Error().Err(err).Msg("failed to marshal clock snapshot")
			return snap
		}
		t.hub.Broadcast(data)
		t.logger.Debug().
			Int("now_offset", nowOffset).
			Int("drivers", len(snap.Entries)).
			Int("alerts", flagged).
			Int("clients", t.hub.ClientCount()).
			Msg("broadcasted shift clock")
	}

	return snap
}

// Snapshot returns a copy of the most recently published snapshot. Before
// the first tick it returns an empty snapshot.
func (t *ShiftTicker) Snapshot() types.ClockSnapshot {
	if snap := t.latest.Load(); snap != nil {
		out := *snap
		out.Entries = make([]types.ElapsedDuration, len(snap.Entries))
		for i, e := range snap.Entries {
			if e.Alerts != nil {
				e.Alerts = append([]types.ShiftAlert(nil), e.Alerts...)
			}
			out.Entries[i] = e
		}
		return out
	}
	return types.ClockSnapshot{
		Type:    types.MessageTypeShiftClock,
		Entries: []types.ElapsedDuration{},
	}
}
