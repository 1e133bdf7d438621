package ics

import (
	"time"

	"fightcal/internal/model"
)

// MonthRange computes the inclusive [start, end] range of the UTC month
// containing now: day 1 at 00:00:00 through the last calendar day at
// 23:59:59. Month lengths and leap years fall out of time.Date's
// day-zero normalization.
func MonthRange(now time.Time) (start, end time.Time) {
	now = now.UTC()
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this month.
	end = time.Date(now.Year(), now.Month()+1, 0, 23, 59, 59, 0, time.UTC)
	return start, end
}

// FilterWithin selects events whose UTC-normalized start instant falls inside
// the inclusive [start, end] range, preserving source order. An empty result
// is a valid outcome, not an error.
func FilterWithin(events []model.Event, start, end time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		t := ev.Start.UTC()
		if t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, ev)
	}
	return out
}
