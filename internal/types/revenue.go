package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used on the wire and in storage keys
const DateLayout = "2006-01-02"

// RevenueEntry is one driver's revenue for one calendar day
type RevenueEntry struct {
	DriverID string  `json:"driverId" dynamodbav:"DriverID"` // partition key
	Date     string  `json:"date" dynamodbav:"Date"`         // YYYY-MM-DD (sort key)
	Amount   float64 `json:"amount" dynamodbav:"Amount"`
}

// DayRecord holds one day of a built week
type DayRecord struct {
	Date        time.Time
	DisplayDate string
	Total       float64
	Amounts     map[string]float64 // driverID -> amount
}

// Keys a day record carries next to the driver series
const (
	DayKeyDate        = "date"
	DayKeyDisplayDate = "displayDate"
	DayKeyTotal       = "total"
)

// IsReservedDayKey reports whether a driver ID would collide with a fixed
// day record key.
func IsReservedDayKey(id string) bool {
	switch id {
	case DayKeyDate, DayKeyDisplayDate, DayKeyTotal:
		return true
	}
	return false
}

// MarshalJSON flattens the per-driver amounts next to the day fields so a
// chart can address each driver series by key.
func (d DayRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.Amounts)+3)
	for driverID, amount := range d.Amounts {
		if IsReservedDayKey(driverID) {
			return nil, fmt.Errorf("driver id %q collides with a day record key", driverID)
		}
		out[driverID] = amount
	}
	out[DayKeyDate] = d.Date.Format(DateLayout)
	out[DayKeyDisplayDate] = d.DisplayDate
	out[DayKeyTotal] = d.Total
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON
func (d *DayRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var date string
	if err := json.Unmarshal(raw[DayKeyDate], &date); err != nil {
		return fmt.Errorf("day record date: %w", err)
	}
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return fmt.Errorf("day record date: %w", err)
	}
	d.Date = parsed

	if v, ok := raw[DayKeyDisplayDate]; ok {
		if err := json.Unmarshal(v, &d.DisplayDate); err != nil {
			return fmt.Errorf("day record displayDate: %w", err)
		}
	}
	if v, ok := raw[DayKeyTotal]; ok {
		if err := json.Unmarshal(v, &d.Total); err != nil {
			return fmt.Errorf("day record total: %w", err)
		}
	}

	d.Amounts = make(map[string]float64, len(raw))
	for key, v := range raw {
		if IsReservedDayKey(key) {
			continue
		}
		var amount float64
		if err := json.Unmarshal(v, &amount); err != nil {
			return fmt.Errorf("day record amount for %s: %w", key, err)
		}
		d.Amounts[key] = amount
	}
	return nil
}

// BestDay is the day a driver earned the most in a week
type BestDay struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// WeeklyDriverStats is the folded week of one driver
type WeeklyDriverStats struct {
	DriverID    string  `json:"driverId"`
	Name        string  `json:"name"`
	Rank        int     `json:"rank"`
	TotalAmount float64 `json:"totalAmount"`
	AvgAmount   float64 `json:"avgAmount"`
	BestDay     BestDay `json:"bestDay"`
}

// WeekReport is the payload served for one week window
type WeekReport struct {
	WeekStart        string              `json:"weekStart"`
	WeekEnd          string              `json:"weekEnd"`
	Previous         string              `json:"previous"`
	Next             string              `json:"next"`
	Days             []DayRecord         `json:"days"`
	Ranking          []WeeklyDriverStats `json:"ranking"`
	WeekTotal        float64             `json:"weekTotal"`
	AveragePerDriver float64             `json:"averagePerDriver"`
}
