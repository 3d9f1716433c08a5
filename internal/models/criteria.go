package models

import (
	"database/sql/driver"
	"encoding/json"
)

// WeatherCriteria maps consecutive-day run lengths to claim percentages,
// one table per dimension. Both the claim engine and the contract validator
// resolve percentages through Percentage so every party derives the same
// number from the same run lengths.
type WeatherCriteria struct {
	RainDayConditions    map[int]int `json:"rain_day_conditions"`
	DroughtDayConditions map[int]int `json:"drought_day_conditions"`
}

// Percentage resolves the claim percentage for the given rain and drought
// run lengths. Per dimension the highest threshold not exceeding the run
// length wins; the two dimensions are resolved independently and summed.
// A run matching no threshold contributes 0.
func (w WeatherCriteria) Percentage(rainDays, droughtDays int) int {
	return lookup(w.RainDayConditions, rainDays) + lookup(w.DroughtDayConditions, droughtDays)
}

func lookup(conditions map[int]int, runLength int) int {
	for i := runLength; i >= 1; i-- {
		if pct, ok := conditions[i]; ok {
			return pct
		}
	}
	return 0
}

func (w WeatherCriteria) Value() (driver.Value, error) {
	return json.Marshal(w)
}

func (w *WeatherCriteria) Scan(value any) error {
	return scanJSON(value, w, "WeatherCriteria")
}
