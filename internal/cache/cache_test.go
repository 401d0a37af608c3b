package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dennisdiepolder/fleetpulse/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestRosterStoreReplace(t *testing.T) {
	store := NewRosterStore()

	if store.Version() != 0 || store.Size() != 0 {
		t.Fatalf("expected empty store at version 0, got v%d with %d drivers", store.Version(), store.Size())
	}

	drivers := []types.Driver{{ID: "d1", Name: "Anna"}, {ID: "d2", Name: "Boris"}}
	shifts := []types.ShiftRecord{{DriverID: "d1", ShiftStartOffset: 79200, IsNightShift: true}}

	v := store.Replace(drivers, shifts)
	if v != 1 {
		t.Errorf("expected version 1, got %d", v)
	}
	if store.Size() != 2 {
		t.Errorf("expected 2 drivers, got %d", store.Size())
	}

	d, ok := store.Driver("d2")
	if !ok || d.Name != "Boris" {
		t.Errorf("expected to find Boris, got %+v (found=%v)", d, ok)
	}
	if _, ok := store.Driver("missing"); ok {
		t.Error("expected missing driver lookup to fail")
	}

	if v := store.Replace(nil, nil); v != 2 {
		t.Errorf("expected version 2, got %d", v)
	}
	if _, ok := store.Driver("d1"); ok {
		t.Error("expected old roster to be gone after replace")
	}
}

func TestRosterStoreCopiesInputAndOutput(t *testing.T) {
	store := NewRosterStore()
	drivers := []types.Driver{{ID: "d1", Name: "Anna"}}
	shifts := []types.ShiftRecord{{DriverID: "d1", ShiftStartOffset: 100}}
	store.Replace(drivers, shifts)

	// mutate the caller's slices
	drivers[0].Name = "changed"
	shifts[0].ShiftStartOffset = 5

	snap := store.Snapshot()
	if snap.Drivers[0].Name != "Anna" || snap.Shifts[0].ShiftStartOffset != 100 {
		t.Fatalf("store was affected by caller mutation: %+v", snap)
	}

	// mutate the snapshot
	snap.Shifts[0].ShiftStartOffset = 7
	if store.Shifts()[0].ShiftStartOffset != 100 {
		t.Error("store was affected by snapshot mutation")
	}
}

func TestRosterStoreConcurrentAccess(t *testing.T) {
	store := NewRosterStore()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			store.Replace([]types.Driver{{ID: "d"}}, []types.ShiftRecord{{DriverID: "d", ShiftStartOffset: n}})
		}(i)
		go func() {
			defer wg.Done()
			snap := store.Snapshot()
			if len(snap.Drivers) != len(snap.Shifts) {
				t.Errorf("inconsistent snapshot: %d drivers, %d shifts", len(snap.Drivers), len(snap.Shifts))
			}
		}()
	}
	wg.Wait()

	if store.Version() != 10 {
		t.Errorf("expected version 10, got %d", store.Version())
	}
}

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisWeekCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisWeekCache(client, ttl, zerolog.Nop()), mr
}

func testReport() types.WeekReport {
	return types.WeekReport{
		WeekStart: "2026-10-12",
		WeekEnd:   "2026-10-18",
		Previous:  "2026-10-05",
		Next:      "2026-10-19",
		Days: []types.DayRecord{{
			Date:        time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
			DisplayDate: "Mon 12.10",
			Total:       30,
			Amounts:     map[string]float64{"d1": 10, "d2": 20},
		}},
		Ranking: []types.WeeklyDriverStats{
			{DriverID: "d2", Rank: 1, TotalAmount: 20},
			{DriverID: "d1", Rank: 2, TotalAmount: 10},
		},
		WeekTotal:        30,
		AveragePerDriver: 15,
	}
}

func TestRedisWeekCacheRoundTrip(t *testing.T) {
	cache, _ := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "2026-10-12", 1); err != nil || ok {
		t.Fatalf("expected miss on empty cache, got ok=%v err=%v", ok, err)
	}

	if err := cache.Set(ctx, "2026-10-12", 1, testReport()); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	got, ok, err := cache.Get(ctx, "2026-10-12", 1)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.WeekTotal != 30 || len(got.Ranking) != 2 || got.Ranking[0].DriverID != "d2" {
		t.Errorf("unexpected cached report: %+v", got)
	}
	if got.Days[0].Amounts["d2"] != 20 || got.Days[0].DisplayDate != "Mon 12.10" {
		t.Errorf("unexpected cached day: %+v", got.Days[0])
	}

	// a different roster version is a different entry
	if _, ok, _ := cache.Get(ctx, "2026-10-12", 2); ok {
		t.Error("expected miss for another roster version")
	}
}

func TestRedisWeekCacheExpires(t *testing.T) {
	cache, mr := newTestRedisCache(t, 30*time.Second)
	ctx := context.Background()

	if err := cache.Set(ctx, "2026-10-12", 1, testReport()); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	mr.FastForward(31 * time.Second)

	if _, ok, _ := cache.Get(ctx, "2026-10-12", 1); ok {
		t.Error("expected entry to expire")
	}
}

func TestRedisWeekCacheCorruptEntry(t *testing.T) {
	cache, mr := newTestRedisCache(t, time.Minute)

	mr.Set("fleetpulse:week:2026-10-12:v1", "not json")

	if _, _, err := cache.Get(context.Background(), "2026-10-12", 1); err == nil {
		t.Error("expected decode error for corrupt entry")
	}
}

func TestNoopWeekCache(t *testing.T) {
	var c WeekCache = NewNoopWeekCache()
	ctx := context.Background()

	if err := c.Set(ctx, "2026-10-12", 1, testReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, err := c.Get(ctx, "2026-10-12", 1); ok || err != nil {
		t.Errorf("expected noop miss, got ok=%v err=%v", ok, err)
	}
}

func TestRedisWeekCacheDelete(t *testing.T) {
	cache, mr := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	if err := cache.Set(ctx, "2026-10-12", 1, testReport()); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := cache.Delete(ctx, "2026-10-12", 1); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if mr.Exists("fleetpulse:week:2026-10-12:v1") {
		t.Error("expected key to be removed")
	}

	// deleting a missing entry is not an error
	if err := cache.Delete(ctx, "2026-10-05", 1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRosterStoreStartEndShift(t *testing.T) {
	store := NewRosterStore()
	store.Replace([]types.Driver{{ID: "d1"}, {ID: "d2"}}, []types.ShiftRecord{{DriverID: "d1", ShiftStartOffset: 3600}})

	if err := store.StartShift(types.ShiftRecord{DriverID: "d2", ShiftStartOffset: 79200, IsNightShift: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// restarting replaces the running shift
	if err := store.StartShift(types.ShiftRecord{DriverID: "d1", ShiftStartOffset: 7200}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shifts := store.Shifts()
	if len(shifts) != 2 {
		t.Fatalf("expected 2 shifts, got %+v", shifts)
	}
	for _, s := range shifts {
		if s.DriverID == "d1" && s.ShiftStartOffset != 7200 {
			t.Errorf("expected d1 restarted at 7200, got %d", s.ShiftStartOffset)
		}
	}

	if store.Version() != 1 {
		t.Errorf("shift changes must not bump the version, got %d", store.Version())
	}

	ended, err := store.EndShift("d2")
	if err != nil || !ended {
		t.Fatalf("expected d2 shift to end, got ended=%v err=%v", ended, err)
	}
	ended, err = store.EndShift("d2")
	if err != nil || ended {
		t.Errorf("expected no running shift for d2, got ended=%v err=%v", ended, err)
	}
	if len(store.Shifts()) != 1 {
		t.Errorf("expected 1 shift left, got %d", len(store.Shifts()))
	}

	if err := store.StartShift(types.ShiftRecord{DriverID: "ghost"}); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}
	if _, err := store.EndShift("ghost"); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}
}
