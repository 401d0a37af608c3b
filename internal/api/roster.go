package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dennisdiepolder/fleetpulse/internal/cache"
	"github.com/dennisdiepolder/fleetpulse/internal/shiftclock"
	"github.com/dennisdiepolder/fleetpulse/internal/types"
	"github.com/rs/zerolog"
)

// RosterPayload is the body of PUT /api/roster
type RosterPayload struct {
	Drivers []types.Driver      `json:"drivers"`
	Shifts  []types.ShiftRecord `json:"shifts"`
}

// RosterHandler reads and replaces the roster
type RosterHandler struct {
	roster *cache.RosterStore
	logger zerolog.Logger
}

// NewRosterHandler creates a new RosterHandler
func NewRosterHandler(roster *cache.RosterStore, logger zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		roster: roster,
		logger: logger.With().Str("component", "roster").Logger(),
	}
}

// GetRoster returns the current roster
// GET /api/roster
func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.roster.Snapshot())
}

// ReplaceRoster swaps in a new roster
// PUT /api/roster
func (h *RosterHandler) ReplaceRoster(w http.ResponseWriter, r *http.Request) {
	var payload RosterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := payload.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	version := h.roster.Replace(payload.Drivers, payload.Shifts)

	h.logger.Info().
		Int64("version", version).
		Int("drivers", len(payload.Drivers)).
		Int("shifts", len(payload.Shifts)).
		Msg("roster replaced")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": version,
		"drivers": len(payload.Drivers),
		"shifts":  len(payload.Shifts),
	})
}

// Validate checks that driver IDs are unique and not reserved, every shift belongs to a known
// driver with at most one shift each, and offsets lie on the 24h clock.
func (p RosterPayload) Validate() error {
	known := make(map[string]bool, len(p.Drivers))
	for _, d := range p.Drivers {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("driver id is required")
		}
		if types.IsReservedDayKey(d.ID) {
			return fmt.Errorf("driver id %q is reserved", d.ID)
		}
		if known[d.ID] {
			return fmt.Errorf("duplicate driver id %q", d.ID)
		}
		known[d.ID] = true
	}

	onShift := make(map[string]bool, len(p.Shifts))
	for _, s := range p.Shifts {
		if !known[s.DriverID] {
			return fmt.Errorf("shift for unknown driver %q", s.DriverID)
		}
		if onShift[s.DriverID] {
			return fmt.Errorf("driver %q has more than one shift", s.DriverID)
		}
		onShift[s.DriverID] = true

		if s.ShiftStartOffset < 0 || s.ShiftStartOffset >= shiftclock.SecondsPerDay {
			return fmt.Errorf("shiftStartOffset %d for driver %q out of range [0, %d]",
				s.ShiftStartOffset, s.DriverID, shiftclock.SecondsPerDay-1)
		}
	}
	return nil
}
