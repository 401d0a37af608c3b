package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Options selects and parameterises the ledger backend
type Options struct {
	Mode        LedgerMode
	DatabaseURL string
	Generator   RevenueGenerator
}

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, opts Options, logger zerolog.Logger) (Store, error) {
	switch opts.Mode {
	case LedgerModeDynamoLocal, LedgerModeDynamoAWS:
		return NewDynamoDBStore(ctx, LoadDynamoConfig(opts.Mode), logger)

	case LedgerModePostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for LEDGER_MODE=%s", opts.Mode)
		}
		db, err := OpenPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(ctx, db, logger)

	case LedgerModeNone:
		logger.Info().Msg("revenue ledger disabled (LEDGER_MODE=none)")
		return NewNoopStore(), nil

	default:
		if opts.Generator == nil {
			return nil, fmt.Errorf("a revenue generator is required for LEDGER_MODE=%s", LedgerModeSimulated)
		}
		logger.Info().Msg("using simulated revenue ledger")
		return NewSimulatedStore(opts.Generator), nil
	}
}
