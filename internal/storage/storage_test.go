package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/dennisdiepolder/fleetpulse/internal/types"
	"github.com/rs/zerolog"
)

var (
	weekFrom = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	weekTo   = time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS driver_daily_revenue").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewPostgresStore(context.Background(), db, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store, mock
}

func TestPostgresGetDailyRevenue(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectQuery("SELECT driver_id, day, amount\\s+FROM driver_daily_revenue").
		WithArgs("2026-10-19", "2026-10-25", "d1", "d2").
		WillReturnRows(sqlmock.NewRows([]string{"driver_id", "day", "amount"}).
			AddRow("d1", weekFrom, 120.5).
			AddRow("d2", weekFrom.AddDate(0, 0, 2), 80.0))

	entries, err := store.GetDailyRevenue(context.Background(), []string{"d1", "d2"}, weekFrom, weekTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0] != (types.RevenueEntry{DriverID: "d1", Date: "2026-10-19", Amount: 120.5}) {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Date != "2026-10-21" {
		t.Errorf("expected second entry on 2026-10-21, got %s", entries[1].Date)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetDailyRevenueNoDrivers(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	entries, err := store.GetDailyRevenue(context.Background(), nil, weekFrom, weekTo)
	if err != nil || entries != nil {
		t.Fatalf("expected no query for empty roster, got %v, %v", entries, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetDailyRevenueError(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	dbErr := errors.New("connection reset")

	mock.ExpectQuery("FROM driver_daily_revenue").WillReturnError(dbErr)

	_, err := store.GetDailyRevenue(context.Background(), []string{"d1"}, weekFrom, weekTo)
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestPostgresSaveDailyRevenue(t *testing.T) {
	store, mock := newMockPostgresStore(t)

	mock.ExpectExec("INSERT INTO driver_daily_revenue").
		WithArgs("d1", "2026-10-19", 99.5).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.SaveDailyRevenue(context.Background(), types.RevenueEntry{DriverID: "d1", Date: "2026-10-19", Amount: 99.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

type fixedGenerator float64

func (g fixedGenerator) Revenue(time.Time, string) float64 { return float64(g) }

func TestSimulatedStore(t *testing.T) {
	store := NewSimulatedStore(fixedGenerator(50))
	ctx := context.Background()

	entries, err := store.GetDailyRevenue(ctx, []string{"d1", "d2"}, weekFrom, weekTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 14 {
		t.Fatalf("expected 14 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Amount != 50 {
			t.Errorf("expected generated amount 50, got %v", e.Amount)
		}
	}

	if err := store.SaveDailyRevenue(ctx, types.RevenueEntry{DriverID: "d2", Date: "2026-10-21", Amount: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, _ = store.GetDailyRevenue(ctx, []string{"d2"}, weekFrom, weekTo)
	for _, e := range entries {
		want := 50.0
		if e.Date == "2026-10-21" {
			want = 0
		}
		if e.Amount != want {
			t.Errorf("%s: expected %v, got %v", e.Date, want, e.Amount)
		}
	}
}

func TestNoopStore(t *testing.T) {
	var s Store = NewNoopStore()
	entries, err := s.GetDailyRevenue(context.Background(), []string{"d1"}, weekFrom, weekTo)
	if err != nil || len(entries) != 0 {
		t.Errorf("expected empty ledger, got %v, %v", entries, err)
	}
}

func TestNewStoreModes(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.Nop()

	s, err := NewStore(ctx, Options{Mode: LedgerModeNone}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*NoopStore); !ok {
		t.Errorf("expected NoopStore, got %T", s)
	}

	s, err = NewStore(ctx, Options{Mode: LedgerModeSimulated, Generator: fixedGenerator(1)}, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*SimulatedStore); !ok {
		t.Errorf("expected SimulatedStore, got %T", s)
	}

	if _, err := NewStore(ctx, Options{Mode: LedgerModeSimulated}, logger); err == nil {
		t.Error("expected error without generator")
	}
	if _, err := NewStore(ctx, Options{Mode: LedgerModePostgres}, logger); err == nil {
		t.Error("expected error without DATABASE_URL")
	}
}

func TestParseLedgerMode(t *testing.T) {
	tests := map[string]LedgerMode{
		"postgres":     LedgerModePostgres,
		"dynamo-local": LedgerModeDynamoLocal,
		"dynamo-aws":   LedgerModeDynamoAWS,
		"none":         LedgerModeNone,
		"":             LedgerModeSimulated,
		"mysql":        LedgerModeSimulated,
	}
	for in, want := range tests {
		if got := ParseLedgerMode(in); got != want {
			t.Errorf("ParseLedgerMode(%q): expected %s, got %s", in, want, got)
		}
	}
}

func TestRevenueEntryDynamoKeys(t *testing.T) {
	item, err := attributevalue.MarshalMap(types.RevenueEntry{DriverID: "d1", Date: "2026-10-19", Amount: 10})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	for _, key := range []string{"DriverID", "Date", "Amount"} {
		if _, ok := item[key]; !ok {
			t.Errorf("expected attribute %s in item", key)
		}
	}
}

func TestLoadDynamoConfig(t *testing.T) {
	t.Setenv("DYNAMO_REVENUE_TABLE", "custom-table")

	cfg := LoadDynamoConfig(LedgerModeDynamoLocal)
	if !cfg.Local {
		t.Error("expected local mode")
	}
	if cfg.RevenueTable != "custom-table" {
		t.Errorf("expected custom-table, got %s", cfg.RevenueTable)
	}
	if cfg.Region != "eu-central-1" {
		t.Errorf("expected default region, got %s", cfg.Region)
	}
	if LoadDynamoConfig(LedgerModeDynamoAWS).Local {
		t.Error("expected aws mode to be non-local")
	}
}
