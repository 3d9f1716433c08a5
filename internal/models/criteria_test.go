package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCriteria() WeatherCriteria {
	return WeatherCriteria{
		RainDayConditions:    map[int]int{5: 20, 10: 50, 15: 100},
		DroughtDayConditions: map[int]int{5: 30, 10: 60, 15: 100},
	}
}

func TestPercentage_ExactThreshold(t *testing.T) {
	criteria := testCriteria()

	assert.Equal(t, 20, criteria.Percentage(5, 0), "5 rain days should hit the 5-day threshold")
	assert.Equal(t, 30, criteria.Percentage(0, 5), "5 drought days should hit the 5-day threshold")
}

func TestPercentage_BetweenThresholds(t *testing.T) {
	criteria := testCriteria()

	// A run between two thresholds resolves to the highest threshold it
	// reached, not the next one up.
	assert.Equal(t, 20, criteria.Percentage(7, 0))
	assert.Equal(t, 50, criteria.Percentage(12, 0))
	assert.Equal(t, 60, criteria.Percentage(0, 14))
}

func TestPercentage_BelowAllThresholds(t *testing.T) {
	criteria := testCriteria()

	assert.Equal(t, 0, criteria.Percentage(4, 0), "Run below the lowest threshold contributes nothing")
	assert.Equal(t, 0, criteria.Percentage(0, 0))
}

func TestPercentage_BeyondHighestThreshold(t *testing.T) {
	criteria := testCriteria()

	assert.Equal(t, 100, criteria.Percentage(40, 0), "Run past the highest threshold resolves to it")
}

func TestPercentage_DimensionsAreSummed(t *testing.T) {
	criteria := testCriteria()

	// Rain and drought resolve independently and their percentages add.
	assert.Equal(t, 50, criteria.Percentage(5, 5))
	assert.Equal(t, 110, criteria.Percentage(10, 10), "Percentage itself is uncapped; the cap is a transition rule")
}

func TestPercentage_Monotonic(t *testing.T) {
	criteria := testCriteria()

	previous := 0
	for days := 0; days <= 20; days++ {
		current := criteria.Percentage(days, 0)
		assert.GreaterOrEqual(t, current, previous, "Longer runs must never resolve to a lower percentage")
		previous = current
	}
}

func TestPercentage_EmptyCriteria(t *testing.T) {
	criteria := WeatherCriteria{}

	assert.Equal(t, 0, criteria.Percentage(30, 30))
}
