package simulator

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/types"
)

var (
	firstNames = []string{"Anna", "Boris", "Chen", "Dilnoza", "Emil", "Farida", "Georg", "Hana", "Ivan", "Jana"}
	lastNames  = []string{"Petrov", "Kim", "Novak", "Rahimova", "Weber", "Sato", "Horvat", "Lind"}
)

// Generator creates a fake fleet roster and deterministic revenue
type Generator struct {
	seed int64
	rng  *rand.Rand

	// MaxDailyAmount bounds a generated daily revenue
	MaxDailyAmount float64

	// OffDayPercent is the share of driver-days with no revenue
	OffDayPercent int
}

// NewGenerator creates a new generator
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:           seed,
		rng:            rand.New(rand.NewSource(seed)),
		MaxDailyAmount: 900,
		OffDayPercent:  10,
	}
}

// GenerateRoster creates count drivers, each with an active shift.
// Distribution: 60% day shifts starting 05:00-10:00, 40% night shifts
// starting 18:00-02:00.
func (g *Generator) GenerateRoster(count int) ([]types.Driver, []types.ShiftRecord) {
	drivers := make([]types.Driver, count)
	shifts := make([]types.ShiftRecord, count)

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("DRV-%04d", i+1)
		drivers[i] = types.Driver{
			ID:   id,
			Name: fmt.Sprintf("%s %s", firstNames[g.rng.Intn(len(firstNames))], lastNames[g.rng.Intn(len(lastNames))]),
		}

		night := g.rng.Intn(100) < 40
		var offset int
		if night {
			// 18:00 + up to 8h, wrapped past midnight
			offset = (18*3600 + g.rng.Intn(8*3600)) % 86400
		} else {
			offset = 5*3600 + g.rng.Intn(5*3600)
		}
		// whole minutes, like a rostering system records them
		offset -= offset % 60

		shifts[i] = types.ShiftRecord{
			DriverID:         id,
			ShiftStartOffset: offset,
			IsNightShift:     night,
		}
	}

	return drivers, shifts
}

// Revenue returns the generated amount for a driver on a date. The same
// inputs always produce the same amount.
func (g *Generator) Revenue(date time.Time, driverID string) float64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%s|%s", g.seed, date.Format(types.DateLayout), driverID)
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	if rng.Intn(100) < g.OffDayPercent {
		return 0
	}

	amount := g.MaxDailyAmount * (0.2 + 0.8*rng.Float64())
	return math.Round(amount*100) / 100
}
