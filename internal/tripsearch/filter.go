// Package tripsearch filters trip collections for the explore surface.
// Filtering is pure and order-preserving: the input slice is never mutated
// and matching trips keep their relative order.
package tripsearch

import (
	"strings"
	"time"

	"github.com/sahil06012005/globe-trotter-match/internal/models"
)

// Period names a forward-looking departure window anchored at evaluation
// time. Unknown values impose no constraint, as does PeriodFlexible.
type Period string

const (
	PeriodNextMonth   Period = "next-month"
	PeriodNext3Months Period = "next-3-months"
	PeriodNext6Months Period = "next-6-months"
	PeriodThisYear    Period = "this-year"
	PeriodFlexible    Period = "flexible"
)

// Filter is a set of optional criteria. Zero values mean "no constraint".
type Filter struct {
	// Destination is matched case-insensitively as a substring of the
	// trip's destination or title.
	Destination string

	// Period constrains the trip's start date to a window anchored at now.
	Period Period

	// Budget must equal the trip's budget category exactly.
	Budget string

	// Interests uses match-any semantics: a trip matches if any of its
	// interests appears in this set. Empty means no constraint.
	Interests []string
}

// IsZero reports whether the filter imposes no constraints.
func (f Filter) IsZero() bool {
	return f.Destination == "" && f.Period == "" && f.Budget == "" && len(f.Interests) == 0
}

// Apply returns the trips matching every active criterion of f, evaluated
// at now. The result preserves the input order.
func Apply(trips []models.Trip, f Filter, now time.Time) []models.Trip {
	if f.IsZero() {
		return trips
	}

	windowEnd, hasWindow := periodEnd(f.Period, now)

	results := make([]models.Trip, 0, len(trips))
	for _, trip := range trips {
		if f.Destination != "" && !matchesDestination(trip, f.Destination) {
			continue
		}
		if hasWindow && !startsWithin(trip, now, windowEnd) {
			continue
		}
		if f.Budget != "" && trip.Budget != f.Budget {
			continue
		}
		if len(f.Interests) > 0 && !matchesAnyInterest(trip, f.Interests) {
			continue
		}
		results = append(results, trip)
	}
	return results
}

// periodEnd maps a period to the inclusive end of its departure window.
func periodEnd(p Period, now time.Time) (time.Time, bool) {
	switch p {
	case PeriodNextMonth:
		return now.AddDate(0, 1, 0), true
	case PeriodNext3Months:
		return now.AddDate(0, 3, 0), true
	case PeriodNext6Months:
		return now.AddDate(0, 6, 0), true
	case PeriodThisYear:
		return time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location()), true
	default:
		// flexible, empty, or unrecognized
		return time.Time{}, false
	}
}

// startsWithin reports whether the trip departs inside [now, end], both
// edges inclusive. Trips with no usable start date fail closed.
func startsWithin(trip models.Trip, now, end time.Time) bool {
	start := trip.StartDate
	if start.IsZero() {
		return false
	}
	return !start.Before(now) && !start.After(end)
}

func matchesDestination(trip models.Trip, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(trip.Destination), term) ||
		strings.Contains(strings.ToLower(trip.Title), term)
}

func matchesAnyInterest(trip models.Trip, wanted []string) bool {
	for _, w := range wanted {
		for _, have := range trip.Interests {
			if have == w {
				return true
			}
		}
	}
	return false
}
