package model

import "time"

// Event is a single calendar entry as parsed from the ICS feed, before
// normalization. It is owned by the ingestion pipeline and discarded once a
// record has been derived from it.
type Event struct {
	Name        string
	Description string
	Location    string

	// Start is the event's start instant with its original zone attached.
	Start time.Time

	// RawRRule / ExDates carry recurrence data for feeds that use it.
	// The UFC feed currently emits plain one-off VEVENTs.
	RawRRule string
	ExDates  []time.Time
}

// EventRecord is the persisted, normalized form of an event. EventName is the
// natural key; the store holds at most one row per name.
type EventRecord struct {
	EventName string `db:"event_name"`

	// EventDate is the start instant converted into the configured civil
	// timezone. It is stored and compared as a civil timestamp.
	EventDate time.Time `db:"event_date"`

	EventURL         *string `db:"event_url"`
	EventDescription string  `db:"event_description"`
	EventLocation    *string `db:"event_location"`
}

// Equal reports whether two records carry identical field values. EventDate
// compares by instant, nullable fields compare by value (nil == nil).
func (r EventRecord) Equal(other EventRecord) bool {
	return r.EventName == other.EventName &&
		r.EventDate.Equal(other.EventDate) &&
		equalPtr(r.EventURL, other.EventURL) &&
		r.EventDescription == other.EventDescription &&
		equalPtr(r.EventLocation, other.EventLocation)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// UpsertOutcome reports which action an upsert took.
type UpsertOutcome string

const (
	OutcomeInserted UpsertOutcome = "inserted"
	OutcomeUpdated  UpsertOutcome = "updated"
	OutcomeNoChange UpsertOutcome = "no_change"
)

// DestinationKind distinguishes the two sink types the notifier supports.
type DestinationKind string

const (
	DestinationChannel DestinationKind = "channel"
	DestinationWebhook DestinationKind = "webhook"
)

// Destination is an opaque notification sink: a chat channel ID or a webhook
// URL. The registry treats (Kind, Target) as the identity.
type Destination struct {
	Kind   DestinationKind `db:"kind"`
	Target string          `db:"target"`
}

// DeliveryResult records the outcome of one delivery attempt to one
// destination.
type DeliveryResult struct {
	Destination Destination
	Err         error
	Elapsed     time.Duration
}

// Delivered reports whether the attempt succeeded.
func (d DeliveryResult) Delivered() bool { return d.Err == nil }
