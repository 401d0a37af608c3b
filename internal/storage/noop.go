package storage

import (
	"context"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/types"
)

// Store is the revenue ledger the weekly aggregation reads from
type Store interface {
	// GetDailyRevenue returns the entries of the given drivers with a date
	// in [from, to]. Driver-days without an entry are simply absent.
	GetDailyRevenue(ctx context.Context, driverIDs []string, from, to time.Time) ([]types.RevenueEntry, error)
	SaveDailyRevenue(ctx context.Context, entry types.RevenueEntry) error
}

// NoopStore is a ledger with no rows, used when revenue is disabled
type NoopStore struct{}

// NewNoopStore returns a ledger that stores nothing
func NewNoopStore() *NoopStore { return &NoopStore{} }

// GetDailyRevenue always returns no entries
func (s *NoopStore) GetDailyRevenue(_ context.Context, _ []string, _, _ time.Time) ([]types.RevenueEntry, error) {
	return nil, nil
}
// SaveDailyRevenue discards the entry
func (s *NoopStore) SaveDailyRevenue(_ context.Context, _ types.RevenueEntry) error { return nil }
