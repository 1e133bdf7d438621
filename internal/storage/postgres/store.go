// Package postgres provides the pgx-backed storage.Interface implementation.
//
// Event dates are civil timestamps: the ufc_events.event_date column is a
// plain TIMESTAMP holding wall-clock time in the configured civil zone. On
// the wire the wall clock is carried tagged as UTC and re-tagged with the
// civil location on scan, so no zone conversion ever shifts the stored value.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fightcal/internal/model"
	"fightcal/internal/storage"
)

type store struct {
	events       *eventStore
	destinations *destinationStore
}

// NewStore creates a Postgres-backed storage interface. loc is the civil
// timezone event dates are interpreted in.
func NewStore(pool *pgxpool.Pool, loc *time.Location) storage.Interface {
	return &store{
		events:       &eventStore{pool: pool, loc: loc},
		destinations: &destinationStore{pool: pool},
	}
}

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func (s *store) Events() storage.EventStore { return s.events }

func (s *store) Destinations() storage.DestinationStore { return s.destinations }

type eventStore struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

const selectColumns = `event_name, event_date, event_url, event_description, event_location`

func (s *eventStore) Upsert(ctx context.Context, rec model.EventRecord) (model.UpsertOutcome, error) {
	existing, err := s.FindByName(ctx, rec.EventName)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}

	if existing == nil {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO ufc_events (event_name, event_date, event_url, event_description, event_location)
			VALUES ($1, $2, $3, $4, $5)`,
			rec.EventName, civilWire(rec.EventDate), rec.EventURL, rec.EventDescription, rec.EventLocation)
		if err != nil {
			return "", fmt.Errorf("insert event %q: %w", rec.EventName, err)
		}
		return model.OutcomeInserted, nil
	}

	if existing.Equal(rec) {
		return model.OutcomeNoChange, nil
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE ufc_events
		SET event_date = $2, event_url = $3, event_description = $4, event_location = $5
		WHERE event_name = $1`,
		rec.EventName, civilWire(rec.EventDate), rec.EventURL, rec.EventDescription, rec.EventLocation)
	if err != nil {
		return "", fmt.Errorf("update event %q: %w", rec.EventName, err)
	}
	return model.OutcomeUpdated, nil
}

func (s *eventStore) FindByName(ctx context.Context, name string) (*model.EventRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM ufc_events WHERE event_name = $1`, name)

	var rec model.EventRecord
	err := row.Scan(&rec.EventName, &rec.EventDate, &rec.EventURL, &rec.EventDescription, &rec.EventLocation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find event %q: %w", name, err)
	}
	rec.EventDate = s.civilLocal(rec.EventDate)
	return &rec, nil
}

func (s *eventStore) EventsOn(ctx context.Context, t time.Time) ([]model.EventRecord, error) {
	dayStart := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	return s.eventsBetween(ctx, dayStart, dayEnd)
}

func (s *eventStore) EventsInWeek(ctx context.Context, t time.Time) ([]model.EventRecord, error) {
	weekStart := storage.WeekStart(t)
	weekEnd := weekStart.AddDate(0, 0, 7)
	return s.eventsBetween(ctx, weekStart, weekEnd)
}

// eventsBetween returns records with start <= event_date < end, ascending.
func (s *eventStore) eventsBetween(ctx context.Context, start, end time.Time) ([]model.EventRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+selectColumns+`
		FROM ufc_events
		WHERE event_date >= $1 AND event_date < $2
		ORDER BY event_date ASC`,
		civilWire(start), civilWire(end))
	if err != nil {
		return nil, fmt.Errorf("query events between %s and %s: %w", start, end, err)
	}
	defer rows.Close()

	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.EventRecord])
	if err != nil {
		return nil, fmt.Errorf("collect event rows: %w", err)
	}
	for i := range recs {
		recs[i].EventDate = s.civilLocal(recs[i].EventDate)
	}
	return recs, nil
}

// civilWire re-tags a civil timestamp's wall clock as UTC for binding into a
// TIMESTAMP column, so the driver cannot shift it during zone normalization.
func civilWire(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// civilLocal re-tags a scanned TIMESTAMP wall clock into the civil location.
func (s *eventStore) civilLocal(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, s.loc)
}

type destinationStore struct {
	pool *pgxpool.Pool
}

func (s *destinationStore) Add(ctx context.Context, d model.Destination) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notify_destinations (kind, target)
		VALUES ($1, $2)
		ON CONFLICT (kind, target) DO NOTHING`,
		string(d.Kind), d.Target)
	if err != nil {
		return fmt.Errorf("add destination: %w", err)
	}
	return nil
}

func (s *destinationStore) Remove(ctx context.Context, d model.Destination) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM notify_destinations WHERE kind = $1 AND target = $2`,
		string(d.Kind), d.Target)
	if err != nil {
		return fmt.Errorf("remove destination: %w", err)
	}
	return nil
}

func (s *destinationStore) List(ctx context.Context) ([]model.Destination, error) {
	rows, err := s.pool.Query(ctx, `SELECT kind, target FROM notify_destinations`)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[model.Destination])
}
