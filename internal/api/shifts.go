package api

import (
	"encoding/json"
	"net/http"

	"github.com/dennisdiepolder/fleetpulse/internal/types"
	"github.com/rs/zerolog"
)

// SnapshotSource exposes the last published clock snapshot
type SnapshotSource interface {
	Snapshot() types.ClockSnapshot
}

// ShiftHandler serves the shift clock over plain HTTP
type ShiftHandler struct {
	source SnapshotSource
	logger zerolog.Logger
}

// NewShiftHandler creates a new ShiftHandler
func NewShiftHandler(source SnapshotSource, logger zerolog.Logger) *ShiftHandler {
	return &ShiftHandler{
		source: source,
		logger: logger.With().Str("component", "shift_handler").Logger(),
	}
}

// GetElapsed returns the latest clock snapshot
// GET /api/shifts/elapsed
func (h *ShiftHandler) GetElapsed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.source.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
