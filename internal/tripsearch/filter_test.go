package tripsearch

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sahil06012005/globe-trotter-match/internal/models"
)

var now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func trip(title, destination, budget string, start time.Time, interests ...string) models.Trip {
	return models.Trip{
		ID:          uuid.New(),
		Title:       title,
		Destination: destination,
		Budget:      budget,
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 7),
		Interests:   interests,
	}
}

func sampleTrips() []models.Trip {
	return []models.Trip{
		trip("Island hopping", "Bali, Indonesia", "Budget", now.AddDate(0, 0, 10), "Beach", "Diving"),
		trip("Tokyo food tour", "Tokyo, Japan", "Luxury", now.AddDate(0, 2, 0), "Cuisine", "City Exploration"),
		trip("Patagonia trek", "El Chaltén, Argentina", "Mid-range", now.AddDate(0, 5, 0), "Hiking", "Nature"),
		trip("Northern lights", "Tromsø, Norway", "Luxury", now.AddDate(1, 0, 0), "Photography", "Winter Sports"),
	}
}

func titles(trips []models.Trip) []string {
	out := make([]string, len(trips))
	for i, t := range trips {
		out[i] = t.Title
	}
	return out
}

func TestApplyEmptyFilterReturnsInputUnchanged(t *testing.T) {
	trips := sampleTrips()
	got := Apply(trips, Filter{}, now)
	assert.Equal(t, titles(trips), titles(got))
}

func TestApplyDestinationMatchesDestinationAndTitle(t *testing.T) {
	trips := sampleTrips()

	got := Apply(trips, Filter{Destination: "tokyo"}, now)
	assert.Equal(t, []string{"Tokyo food tour"}, titles(got))

	// Matches against the title as well
	got = Apply(trips, Filter{Destination: "island"}, now)
	assert.Equal(t, []string{"Island hopping"}, titles(got))
}

func TestApplyPeriodWindows(t *testing.T) {
	trips := sampleTrips()

	tests := []struct {
		period Period
		want   []string
	}{
		{PeriodNextMonth, []string{"Island hopping"}},
		{PeriodNext3Months, []string{"Island hopping", "Tokyo food tour"}},
		{PeriodNext6Months, []string{"Island hopping", "Tokyo food tour", "Patagonia trek"}},
		{PeriodThisYear, []string{"Island hopping", "Tokyo food tour", "Patagonia trek"}},
		{PeriodFlexible, []string{"Island hopping", "Tokyo food tour", "Patagonia trek", "Northern lights"}},
		{Period("someday"), []string{"Island hopping", "Tokyo food tour", "Patagonia trek", "Northern lights"}},
	}

	for _, tt := range tests {
		got := Apply(trips, Filter{Period: tt.period}, now)
		assert.Equal(t, tt.want, titles(got), "period %q", tt.period)
	}
}

func TestApplyPeriodLowerBoundInclusive(t *testing.T) {
	departing := trip("Departing now", "Lisbon", "Budget", now)
	got := Apply([]models.Trip{departing}, Filter{Period: PeriodNextMonth}, now)
	assert.Len(t, got, 1)
}

func TestApplyPeriodExcludesPastTrips(t *testing.T) {
	past := trip("Last month", "Rome", "Budget", now.AddDate(0, -1, 0))
	got := Apply([]models.Trip{past}, Filter{Period: PeriodThisYear}, now)
	assert.Empty(t, got)
}

func TestApplyZeroStartDateFailsClosed(t *testing.T) {
	broken := trip("No dates", "Nowhere", "Budget", time.Time{})
	got := Apply([]models.Trip{broken}, Filter{Period: PeriodNext6Months}, now)
	assert.Empty(t, got)

	// Without a period filter the trip still passes through.
	got = Apply([]models.Trip{broken}, Filter{Destination: "nowhere"}, now)
	assert.Len(t, got, 1)
}

func TestApplyBudgetExactMatch(t *testing.T) {
	trips := []models.Trip{
		trip("Cheap", "Hanoi", "Budget", now.AddDate(0, 1, 0)),
		trip("Fancy", "Dubai", "Luxury", now.AddDate(0, 1, 0)),
	}
	got := Apply(trips, Filter{Budget: "Luxury"}, now)
	assert.Equal(t, []string{"Fancy"}, titles(got))
}

func TestApplyInterestsMatchAny(t *testing.T) {
	trips := sampleTrips()

	got := Apply(trips, Filter{Interests: []string{"Diving", "Hiking"}}, now)
	assert.Equal(t, []string{"Island hopping", "Patagonia trek"}, titles(got))

	// No overlap yields the empty set
	got = Apply(trips, Filter{Interests: []string{"Yoga"}}, now)
	assert.Empty(t, got)

	// Empty interest set imposes no constraint
	got = Apply(trips, Filter{Interests: []string{}}, now)
	assert.Len(t, got, len(trips))
}

func TestApplyCombinesCriteria(t *testing.T) {
	trips := sampleTrips()
	got := Apply(trips, Filter{
		Destination: "japan",
		Period:      PeriodNext3Months,
		Budget:      "Luxury",
		Interests:   []string{"Cuisine"},
	}, now)
	assert.Equal(t, []string{"Tokyo food tour"}, titles(got))
}

func TestApplyIsPureAndIdempotent(t *testing.T) {
	trips := sampleTrips()
	filter := Filter{Period: PeriodNext6Months, Interests: []string{"Beach", "Hiking"}}

	first := Apply(trips, filter, now)
	second := Apply(trips, filter, now)
	assert.Equal(t, titles(first), titles(second))

	// Input order and length untouched
	assert.Equal(t, []string{"Island hopping", "Tokyo food tour", "Patagonia trek", "Northern lights"}, titles(trips))

	// Filtering the filtered output again changes nothing
	third := Apply(first, filter, now)
	assert.Equal(t, titles(first), titles(third))
}
