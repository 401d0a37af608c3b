// Package aggregator folds a week of per-driver revenue samples into day
// totals, per-driver statistics and a ranking.
package aggregator

import (
	"sort"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/shiftclock"
	"github.com/dennisdiepolder/fleetpulse/internal/types"
)

// SampleSource yields the non-negative revenue of one driver on one date
type SampleSource func(date time.Time, driverID string) float64

// BuildWeek samples every driver on each of the seven dates of the window.
// Records are returned date-ascending.
func BuildWeek(window WeekWindow, drivers []types.Driver, source SampleSource) []types.DayRecord {
	records := make([]types.DayRecord, 0, DaysPerWeek)

	for i := 0; i < DaysPerWeek; i++ {
		date := window.Day(i)
		record := types.DayRecord{
			Date:        date,
			DisplayDate: shiftclock.FormatDisplayDate(date),
			Amounts:     make(map[string]float64, len(drivers)),
		}

		for _, driver := range drivers {
			amount := source(date, driver.ID)
			record.Amounts[driver.ID] = amount
			record.Total += amount
		}

		records = append(records, record)
	}

	return records
}

// RankDrivers computes each driver's week and sorts descending by total.
// Drivers with equal totals keep their roster order.
func RankDrivers(records []types.DayRecord, drivers []types.Driver) []types.WeeklyDriverStats {
	ranking := make([]types.WeeklyDriverStats, 0, len(drivers))

	for _, driver := range drivers {
		stats := types.WeeklyDriverStats{
			DriverID: driver.ID,
			Name:     driver.Name,
		}

		for i, record := range records {
			amount := record.Amounts[driver.ID]
			stats.TotalAmount += amount

			// strict > keeps the earliest date on ties
			if i == 0 || amount > stats.BestDay.Amount {
				stats.BestDay = types.BestDay{
					Date:   record.Date.Format(types.DateLayout),
					Amount: amount,
				}
			}
		}

		stats.AvgAmount = stats.TotalAmount / DaysPerWeek
		ranking = append(ranking, stats)
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].TotalAmount > ranking[j].TotalAmount
	})

	for i := range ranking {
		ranking[i].Rank = i + 1
	}

	return ranking
}

// WeekTotal sums all day totals
func WeekTotal(records []types.DayRecord) float64 {
	var total float64
	for _, record := range records {
		total += record.Total
	}
	return total
}

// AveragePerDriver divides the week total by the roster size. An empty
// roster yields 0.
func AveragePerDriver(records []types.DayRecord, driverCount int) float64 {
	if driverCount <= 0 {
		return 0
	}
	return WeekTotal(records) / float64(driverCount)
}

// BuildReport builds a week and everything derived from it
func BuildReport(window WeekWindow, drivers []types.Driver, source SampleSource) types.WeekReport {
	days := BuildWeek(window, drivers, source)

	return types.WeekReport{
		WeekStart:        window.String(),
		WeekEnd:          window.End().Format(types.DateLayout),
		Previous:         NavigateWeek(window, Previous).String(),
		Next:             NavigateWeek(window, Next).String(),
		Days:             days,
		Ranking:          RankDrivers(days, drivers),
		WeekTotal:        WeekTotal(days),
		AveragePerDriver: AveragePerDriver(days, len(drivers)),
	}
}
