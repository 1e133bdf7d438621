package ics

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "fightcal/internal/log"
	"fightcal/internal/model"
)

// ParseError reports malformed calendar data. Like FetchError it aborts the
// current ingestion run only.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse ics: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// Parse parses an ICS payload into events. Individual malformed VEVENTs are
// logged and skipped; only a body-level failure aborts the parse.
func Parse(body []byte) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("empty ICS body")}
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	events := make([]model.Event, 0, len(cal.Events()))
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			appLog.Error("vevent parse failed, skipping", perr, "uid", uidOf(comp))
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.Event, error) {
	var out model.Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Name = p.Value
	}
	if out.Name == "" {
		return out, fmt.Errorf("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("missing or invalid DTSTART: %w", err)
	}
	out.Start = start

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, nil
}

func uidOf(ve *ical.VEvent) string {
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		return p.Value
	}
	return ""
}

// parseICSTime parses the basic ICS date/date-time forms used by EXDATE.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}

	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}
	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, time.UTC)
	}
	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, time.UTC)
}
