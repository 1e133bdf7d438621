package storage

import (
	"context"
	"time"

	"fightcal/internal/model"
)

// Interface is implemented by the storage backends (postgres, memory).
type Interface interface {
	Events() EventStore
	Destinations() DestinationStore
}

// EventStore manages persisted event records keyed by event name.
type EventStore interface {
	// Upsert inserts rec, overwrites the existing row when any field
	// differs, or does nothing when the stored row is identical.
	Upsert(ctx context.Context, rec model.EventRecord) (model.UpsertOutcome, error)

	// FindByName returns the record for name or ErrNotFound.
	FindByName(ctx context.Context, name string) (*model.EventRecord, error)

	// EventsOn returns records whose stored civil calendar day equals the
	// day containing t. Empty slice, not an error, on no match.
	EventsOn(ctx context.Context, t time.Time) ([]model.EventRecord, error)

	// EventsInWeek returns records inside the Monday-Sunday week containing
	// t, ordered by event date ascending.
	EventsInWeek(ctx context.Context, t time.Time) ([]model.EventRecord, error)
}

// DestinationStore manages the notification destination registry.
type DestinationStore interface {
	// Add registers a destination. Adding an existing destination is a
	// no-op.
	Add(ctx context.Context, d model.Destination) error

	// Remove unregisters a destination. Removing an unknown destination is
	// not an error.
	Remove(ctx context.Context, d model.Destination) error

	// List returns all registered destinations in no particular order.
	List(ctx context.Context) ([]model.Destination, error)
}

// WeekStart returns midnight of the Monday beginning the week that contains
// t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}
