package storage

import (
	"context"
	"sync"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/types"
)

// RevenueGenerator produces a deterministic amount per driver and date
type RevenueGenerator interface {
	Revenue(date time.Time, driverID string) float64
}

// SimulatedStore serves generated revenue. Saved entries override the
// generated amount for their driver-day.
type SimulatedStore struct {
	generator RevenueGenerator
	overrides map[string]float64 // driverID|date -> amount
	mu        sync.RWMutex
}

// NewSimulatedStore creates a ledger backed by a generator
func NewSimulatedStore(generator RevenueGenerator) *SimulatedStore {
	return &SimulatedStore{
		generator: generator,
		overrides: make(map[string]float64),
	}
}

func overrideKey(driverID, date string) string {
	return driverID + "|" + date
}

// GetDailyRevenue returns generated amounts, with saved entries taking precedence
func (s *SimulatedStore) GetDailyRevenue(_ context.Context, driverIDs []string, from, to time.Time) ([]types.RevenueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []types.RevenueEntry
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		date := day.Format(types.DateLayout)
		for _, driverID := range driverIDs {
			amount, ok := s.overrides[overrideKey(driverID, date)]
			if !ok {
				amount = s.generator.Revenue(day, driverID)
			}
			entries = append(entries, types.RevenueEntry{
				DriverID: driverID,
				Date:     date,
				Amount:   amount,
			})
		}
	}
	return entries, nil
}

// SaveDailyRevenue records an override for the driver-day
func (s *SimulatedStore) SaveDailyRevenue(_ context.Context, entry types.RevenueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[overrideKey(entry.DriverID, entry.Date)] = entry.Amount
	return nil
}
