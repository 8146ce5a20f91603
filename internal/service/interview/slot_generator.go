package interview

import (
	"time"
)

// SlotGenerator produces ordered candidate interview times. All arithmetic is
// in UTC and there is no randomness: identical inputs and an identical now
// yield identical output.
type SlotGenerator struct {
	Count               int
	MinLeadHours        int
	SlotDurationMinutes int
	WindowStartHour     int
	WindowEndHour       int
	StepMinutes         int
}

// DefaultSlotGenerator returns the production walk parameters: at least 24h
// of lead time, 30-minute slots on the hour inside a 10:00-17:00 UTC window.
func DefaultSlotGenerator(count int) SlotGenerator {
	return SlotGenerator{
		Count:               count,
		MinLeadHours:        24,
		SlotDurationMinutes: 30,
		WindowStartHour:     10,
		WindowEndHour:       17,
		StepMinutes:         60,
	}
}

// Generate walks forward from the earliest admissible instant in step
// increments, collecting instants inside the daily window whose date is not
// excluded. The search is bounded to 30 days; a short or empty result means
// no slots are available and the caller escalates.
func (g SlotGenerator) Generate(now time.Time, startFrom *time.Time, excludeDates []time.Time) []time.Time {
	excluded := make(map[string]struct{}, len(excludeDates))
	for _, d := range excludeDates {
		excluded[d.UTC().Format("2006-01-02")] = struct{}{}
	}

	cursor := now.UTC().Add(time.Duration(g.MinLeadHours) * time.Hour)
	if startFrom != nil {
		after := startFrom.UTC().Add(time.Duration(g.SlotDurationMinutes) * time.Minute)
		if after.After(cursor) {
			cursor = after
		}
	}
	cursor = cursor.Truncate(time.Minute)

	// Round up to the next step boundary within the hour.
	if rem := cursor.Minute() % g.StepMinutes; rem != 0 {
		cursor = cursor.Add(time.Duration(g.StepMinutes-rem) * time.Minute)
	}
	if cursor.Hour() >= g.WindowEndHour || cursor.Hour() < g.WindowStartHour {
		cursor = nextWindowStart(cursor, g.WindowStartHour)
	}

	var slots []time.Time
	daysSearched := 0
	for len(slots) < g.Count && daysSearched < 30 {
		if _, skip := excluded[cursor.Format("2006-01-02")]; skip {
			cursor = nextWindowStart(cursor, g.WindowStartHour)
			daysSearched++
			continue
		}
		if cursor.Hour() >= g.WindowEndHour {
			cursor = nextWindowStart(cursor, g.WindowStartHour)
			daysSearched++
			continue
		}
		if cursor.Hour() >= g.WindowStartHour {
			slots = append(slots, cursor)
		}
		cursor = cursor.Add(time.Duration(g.StepMinutes) * time.Minute)
	}

	return slots
}

func nextWindowStart(t time.Time, windowStartHour int) time.Time {
	next := t.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), windowStartHour, 0, 0, 0, time.UTC)
}
