// Package ingest composes the feed adapter, month window, normalizer, and
// upsert store into the scheduled ingestion run.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fightcal/internal/ics"
	appLog "fightcal/internal/log"
	"fightcal/internal/metrics"
	"fightcal/internal/model"
	"fightcal/internal/normalize"
	"fightcal/internal/storage"
)

// Fetcher is the feed-retrieval dependency (satisfied by *ics.Fetcher).
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// RecordFailure is a per-event ingestion failure that did not stop the batch.
type RecordFailure struct {
	EventName string
	Err       error
}

// Report summarizes one ingestion run.
type Report struct {
	RunID string

	// Err is set when the fetch or parse step failed; the run stored
	// nothing in that case and the next scheduled cycle retries.
	Err error

	Inserted  int
	Updated   int
	Unchanged int
	Failures  []RecordFailure
}

// Failed reports whether the run aborted before storing anything.
func (r Report) Failed() bool { return r.Err != nil }

// Orchestrator drives one ingestion cycle: fetch, expand, filter to the
// current month, normalize, upsert.
type Orchestrator struct {
	fetcher Fetcher
	events  storage.EventStore
	loc     *time.Location
	now     func() time.Time
}

// New creates an ingestion orchestrator. now is injectable for tests; nil
// means time.Now.
func New(fetcher Fetcher, events storage.EventStore, loc *time.Location, now func() time.Time) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{fetcher: fetcher, events: events, loc: loc, now: now}
}

// Run executes one ingestion cycle. It never panics and never lets an error
// escape past the report: a fetch/parse failure aborts the run, a per-record
// failure is recorded and the batch continues. Designed to be invoked
// unattended on a timer.
func (o *Orchestrator) Run(ctx context.Context) Report {
	report := Report{RunID: uuid.New().String()}
	appLog.Info("ingestion run starting", "run_id", report.RunID)

	body, err := o.fetcher.Fetch(ctx)
	if err != nil {
		report.Err = err
		appLog.Error("ingestion aborted: fetch failed", err, "run_id", report.RunID)
		metrics.IngestRuns.WithLabelValues("fetch_failed").Inc()
		return report
	}

	events, err := ics.Parse(body)
	if err != nil {
		report.Err = err
		appLog.Error("ingestion aborted: parse failed", err, "run_id", report.RunID)
		metrics.IngestRuns.WithLabelValues("parse_failed").Inc()
		return report
	}

	start, end := ics.MonthRange(o.now())
	events = ics.ExpandWithin(events, start, end)
	events = ics.FilterWithin(events, start, end)

	if len(events) == 0 {
		appLog.Info("no events found for this month", "run_id", report.RunID)
	}

	for _, ev := range events {
		rec := normalize.Record(ev, o.loc)

		outcome, err := o.events.Upsert(ctx, rec)
		if err != nil {
			// One bad record must not block the rest of the month.
			report.Failures = append(report.Failures, RecordFailure{EventName: rec.EventName, Err: err})
			appLog.Error("event upsert failed", err, "run_id", report.RunID, "name", rec.EventName)
			metrics.EventsIngested.WithLabelValues("failed").Inc()
			continue
		}

		metrics.EventsIngested.WithLabelValues(string(outcome)).Inc()
		switch outcome {
		case model.OutcomeInserted:
			report.Inserted++
			appLog.Info("event inserted", "run_id", report.RunID, "name", rec.EventName)
		case model.OutcomeUpdated:
			report.Updated++
			appLog.Info("event updated", "run_id", report.RunID, "name", rec.EventName)
		case model.OutcomeNoChange:
			report.Unchanged++
			appLog.Debug("event unchanged", "run_id", report.RunID, "name", rec.EventName)
		}
	}

	metrics.IngestRuns.WithLabelValues("completed").Inc()
	appLog.Info("ingestion run completed",
		"run_id", report.RunID,
		"inserted", report.Inserted,
		"updated", report.Updated,
		"unchanged", report.Unchanged,
		"failed", len(report.Failures),
	)
	return report
}
