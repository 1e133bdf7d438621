package normalize

import (
	"regexp"
	"time"

	"fightcal/internal/model"
)

// CivilLayout is the civil timestamp form event dates are rendered in for
// payloads ("YYYY-MM-DD HH:MM:SS" in the configured timezone).
const CivilLayout = "2006-01-02 15:04:05"

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Record maps one calendar event onto the persisted record form:
//
//   - EventName verbatim
//   - EventDate converted into the civil timezone loc
//   - EventURL: first http(s) URL found in the description, nil if none
//   - EventDescription: description, possibly empty
//   - EventLocation: nil when the feed gave no location
//
// Pure function; total over any well-formed event.
func Record(ev model.Event, loc *time.Location) model.EventRecord {
	rec := model.EventRecord{
		EventName:        ev.Name,
		EventDate:        ev.Start.In(loc),
		EventDescription: ev.Description,
	}

	if m := urlPattern.FindString(ev.Description); m != "" {
		rec.EventURL = &m
	}
	if ev.Location != "" {
		l := ev.Location
		rec.EventLocation = &l
	}

	return rec
}
