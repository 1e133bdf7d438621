// Package scheduler drives the three periodic jobs: monthly ingestion, the
// hour-gated daily notify, and the weekday-gated weekly digest.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"fightcal/internal/ingest"
	appLog "fightcal/internal/log"
	"fightcal/internal/metrics"
	"fightcal/internal/model"
	"fightcal/internal/notify"
	"fightcal/internal/storage"
)

// Clock supplies "now" so date gating is deterministic under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Ingestor runs one ingestion cycle (satisfied by *ingest.Orchestrator).
type Ingestor interface {
	Run(ctx context.Context) ingest.Report
}

// Deliverer fans a message out to a destination set (satisfied by
// *notify.Notifier).
type Deliverer interface {
	Fanout(ctx context.Context, msg notify.Message, destinations []model.Destination) []model.DeliveryResult
}

// Config holds the schedule knobs.
type Config struct {
	// IngestCron is the cron spec for the monthly ingestion job.
	IngestCron string

	// DailyHour gates the hourly daily-notify tick: the job acts only when
	// the civil hour equals this value, so it effectively runs once per
	// civil day with a one-tick tolerance window.
	DailyHour int

	// WeeklyWeekday gates the daily weekly-digest tick the same way.
	WeeklyWeekday time.Weekday
}

// Scheduler owns the cron runner and the three jobs. Jobs are independent:
// a failure in one never crashes the process or blocks the others.
type Scheduler struct {
	cron     *cron.Cron
	clock    Clock
	loc      *time.Location
	cfg      Config
	ingestor Ingestor
	events   storage.EventStore
	registry storage.DestinationStore
	notifier Deliverer

	ready   atomic.Bool
	baseCtx context.Context
}

// New creates a Scheduler. clock may be nil for the system clock.
func New(cfg Config, ingestor Ingestor, store storage.Interface, notifier Deliverer, loc *time.Location, clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	return &Scheduler{
		cron:     cron.New(),
		clock:    clock,
		loc:      loc,
		cfg:      cfg,
		ingestor: ingestor,
		events:   store.Events(),
		registry: store.Destinations(),
		notifier: notifier,
	}
}

// MarkReady releases the jobs. Until called, every tick is a no-op so that
// nothing is delivered before the chat session is confirmed usable.
func (s *Scheduler) MarkReady() {
	s.ready.Store(true)
	appLog.Info("scheduler ready, jobs armed")
}

// Start registers the three jobs and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	s.baseCtx = ctx

	if _, err := s.cron.AddFunc(s.cfg.IngestCron, s.ingestTick); err != nil {
		return fmt.Errorf("register ingest job %q: %w", s.cfg.IngestCron, err)
	}
	if _, err := s.cron.AddFunc("@hourly", s.dailyTick); err != nil {
		return fmt.Errorf("register daily notify job: %w", err)
	}
	if _, err := s.cron.AddFunc("@every 24h", s.weeklyTick); err != nil {
		return fmt.Errorf("register weekly notify job: %w", err)
	}

	s.cron.Start()
	appLog.Info("scheduler started",
		"ingest_cron", s.cfg.IngestCron,
		"daily_hour", s.cfg.DailyHour,
		"weekly_weekday", s.cfg.WeeklyWeekday.String(),
	)
	return nil
}

// Stop halts the cron runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	appLog.Info("scheduler stopped")
}

func (s *Scheduler) ingestTick() {
	if !s.ready.Load() {
		metrics.JobTicks.WithLabelValues("ingest", "false").Inc()
		return
	}
	metrics.JobTicks.WithLabelValues("ingest", "true").Inc()
	s.ingestor.Run(s.baseCtx)
}

// dailyTick fires hourly; it acts only when the civil hour matches the
// configured trigger hour.
func (s *Scheduler) dailyTick() {
	now := s.clock.Now().In(s.loc)
	if !s.ready.Load() || now.Hour() != s.cfg.DailyHour {
		metrics.JobTicks.WithLabelValues("daily", "false").Inc()
		return
	}
	metrics.JobTicks.WithLabelValues("daily", "true").Inc()
	s.notifyToday(s.baseCtx, now)
}

// weeklyTick fires daily; it acts only on the configured weekday.
func (s *Scheduler) weeklyTick() {
	now := s.clock.Now().In(s.loc)
	if !s.ready.Load() || now.Weekday() != s.cfg.WeeklyWeekday {
		metrics.JobTicks.WithLabelValues("weekly", "false").Inc()
		return
	}
	metrics.JobTicks.WithLabelValues("weekly", "true").Inc()
	s.notifyWeek(s.baseCtx, now)
}

// notifyToday delivers one message per (event, destination) pair for today's
// events.
func (s *Scheduler) notifyToday(ctx context.Context, now time.Time) {
	events, err := s.events.EventsOn(ctx, now)
	if err != nil {
		appLog.Error("daily notify: query failed", err)
		return
	}
	if len(events) == 0 {
		appLog.Debug("daily notify: no events today")
		return
	}

	destinations, err := s.registry.List(ctx)
	if err != nil {
		appLog.Error("daily notify: list destinations failed", err)
		return
	}

	for _, rec := range events {
		results := s.notifier.Fanout(ctx, notify.EventMessage(rec), destinations)
		s.recordResults("daily", rec.EventName, results)
	}
}

// notifyWeek delivers a single digest of the week's events to each
// destination.
func (s *Scheduler) notifyWeek(ctx context.Context, now time.Time) {
	events, err := s.events.EventsInWeek(ctx, now)
	if err != nil {
		appLog.Error("weekly notify: query failed", err)
		return
	}
	if len(events) == 0 {
		appLog.Debug("weekly notify: no events this week")
		return
	}

	destinations, err := s.registry.List(ctx)
	if err != nil {
		appLog.Error("weekly notify: list destinations failed", err)
		return
	}

	results := s.notifier.Fanout(ctx, notify.WeeklyDigest(events), destinations)
	s.recordResults("weekly", "weekly digest", results)
}

func (s *Scheduler) recordResults(job, subject string, results []model.DeliveryResult) {
	delivered := 0
	for _, res := range results {
		outcome := "ok"
		if !res.Delivered() {
			outcome = "error"
		} else {
			delivered++
		}
		metrics.Deliveries.WithLabelValues(string(res.Destination.Kind), outcome).Inc()
	}
	appLog.Info("fanout complete",
		"job", job,
		"subject", subject,
		"delivered", delivered,
		"failed", len(results)-delivered,
	)
}
