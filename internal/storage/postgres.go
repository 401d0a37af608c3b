package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/types"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

const revenueSchema = `
CREATE TABLE IF NOT EXISTS driver_daily_revenue (
	driver_id TEXT NOT NULL,
	day       DATE NOT NULL,
	amount    NUMERIC(12, 2) NOT NULL CHECK (amount >= 0),
	PRIMARY KEY (driver_id, day)
)`

// PostgresStore implements Store on a driver_daily_revenue table
type PostgresStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenPostgres opens a pgx-backed database/sql pool and verifies it
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}

	return db, nil
}

// NewPostgresStore creates the store and makes sure the table exists
func NewPostgresStore(ctx context.Context, db *sql.DB, logger zerolog.Logger) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, revenueSchema); err != nil {
		return nil, fmt.Errorf("create driver_daily_revenue table: %w", err)
	}

	logger.Info().Msg("Postgres ledger initialized")
	return &PostgresStore{db: db, logger: logger}, nil
}

// GetDailyRevenue reads the ledger rows for the drivers between from and to
func (s *PostgresStore) GetDailyRevenue(ctx context.Context, driverIDs []string, from, to time.Time) ([]types.RevenueEntry, error) {
	if len(driverIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(driverIDs))
	args := make([]interface{}, 0, len(driverIDs)+2)
	args = append(args, from.Format(types.DateLayout), to.Format(types.DateLayout))
	for i, id := range driverIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT driver_id, day, amount
		FROM driver_daily_revenue
		WHERE day BETWEEN $1::date AND $2::date
		AND driver_id IN (%s)
		ORDER BY day, driver_id`, strings.Join(placeholders, ", "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query driver_daily_revenue: %w", err)
	}
	defer rows.Close()

	var entries []types.RevenueEntry
	for rows.Next() {
		var (
			entry types.RevenueEntry
			day   time.Time
		)
		if err := rows.Scan(&entry.DriverID, &day, &entry.Amount); err != nil {
			return nil, fmt.Errorf("scan driver_daily_revenue row: %w", err)
		}
		entry.Date = day.Format(types.DateLayout)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate driver_daily_revenue rows: %w", err)
	}

	return entries, nil
}

// SaveDailyRevenue upserts one driver-day amount
func (s *PostgresStore) SaveDailyRevenue(ctx context.Context, entry types.RevenueEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO driver_daily_revenue (driver_id, day, amount)
		VALUES ($1, $2::date, $3)
		ON CONFLICT (driver_id, day) DO UPDATE SET amount = EXCLUDED.amount`,
		entry.DriverID, entry.Date, entry.Amount)
	if err != nil {
		return fmt.Errorf("upsert driver_daily_revenue: %w", err)
	}
	return nil
}
