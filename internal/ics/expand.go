package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "fightcal/internal/log"
	"fightcal/internal/model"
)

const maxOccurrencesPerEvent = 500

// ExpandWithin turns events that carry an RRULE into concrete occurrences
// inside the inclusive [start, end] window, honoring EXDATE. Non-recurring
// events pass through untouched (the window filter runs separately).
//
// Occurrence caps guard against pathological rules; hitting the cap logs and
// truncates rather than failing the run.
func ExpandWithin(events []model.Event, start, end time.Time) []model.Event {
	out := make([]model.Event, 0, len(events))

	for _, ev := range events {
		if ev.RawRRule == "" {
			out = append(out, ev)
			continue
		}
		out = append(out, expandRecurring(ev, start, end)...)
	}

	return out
}

func expandRecurring(ev model.Event, start, end time.Time) []model.Event {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("failed to parse RRULE, keeping base event only", err,
			"name", ev.Name, "rrule", ev.RawRRule)
		return []model.Event{ev}
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	occTimes := set.Between(start.In(ev.Start.Location()), end.In(ev.Start.Location()), true)
	if len(occTimes) > maxOccurrencesPerEvent {
		appLog.Warn("recurrence expansion truncated",
			"name", ev.Name, "cap", maxOccurrencesPerEvent, "count", len(occTimes))
		occTimes = occTimes[:maxOccurrencesPerEvent]
	}

	out := make([]model.Event, 0, len(occTimes))
	for _, occStart := range occTimes {
		occ := ev
		occ.Start = occStart
		occ.RawRRule = ""
		occ.ExDates = nil
		out = append(out, occ)
	}
	return out
}
