package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fightcal/internal/ics"
	"fightcal/internal/model"
	"fightcal/internal/storage"
	"fightcal/internal/storage/memory"
)

const feedApril = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:ufc-300@example.com
DTSTART:20240414T020000Z
SUMMARY:UFC 300
DESCRIPTION:Watch at https://example.com/watch
LOCATION:%s
END:VEVENT
BEGIN:VEVENT
UID:ufc-next-month@example.com
DTSTART:20240511T020000Z
SUMMARY:UFC 301
END:VEVENT
END:VCALENDAR
`

func feedServer(t *testing.T, location string) *httptest.Server {
	t.Helper()
	body := strings.ReplaceAll(fmt.Sprintf(feedApril, location), "\n", "\r\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func aprilNow() time.Time {
	return time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
}

func sydney(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)
	return loc
}

func TestRunInsertsNormalizedRecord(t *testing.T) {
	srv := feedServer(t, "Las Vegas")
	store := memory.NewStore()

	o := New(ics.NewFetcher(srv.URL, 5*time.Second), store.Events(), sydney(t), aprilNow)
	report := o.Run(context.Background())

	require.False(t, report.Failed())
	assert.NotEmpty(t, report.RunID)
	// The May event falls outside the month window.
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 0, report.Updated)
	assert.Empty(t, report.Failures)

	rec, err := store.Events().FindByName(context.Background(), "UFC 300")
	require.NoError(t, err)
	assert.Equal(t, "2024-04-14 12:00:00", rec.EventDate.Format("2006-01-02 15:04:05"))
	require.NotNil(t, rec.EventURL)
	assert.Equal(t, "https://example.com/watch", *rec.EventURL)
	require.NotNil(t, rec.EventLocation)
	assert.Equal(t, "Las Vegas", *rec.EventLocation)
}

func TestRunReingestIsStable(t *testing.T) {
	srv := feedServer(t, "Las Vegas")
	store := memory.NewStore()
	o := New(ics.NewFetcher(srv.URL, 5*time.Second), store.Events(), sydney(t), aprilNow)

	first := o.Run(context.Background())
	require.Equal(t, 1, first.Inserted)

	// Identical feed: nothing rewritten.
	second := o.Run(context.Background())
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 1, second.Unchanged)
}

func TestRunDetectsFieldChange(t *testing.T) {
	store := memory.NewStore()
	loc := sydney(t)

	srv := feedServer(t, "Las Vegas")
	first := New(ics.NewFetcher(srv.URL, 5*time.Second), store.Events(), loc, aprilNow).Run(context.Background())
	require.Equal(t, 1, first.Inserted)

	moved := feedServer(t, "Paris")
	second := New(ics.NewFetcher(moved.URL, 5*time.Second), store.Events(), loc, aprilNow).Run(context.Background())
	assert.Equal(t, 1, second.Updated)

	rec, err := store.Events().FindByName(context.Background(), "UFC 300")
	require.NoError(t, err)
	require.NotNil(t, rec.EventLocation)
	assert.Equal(t, "Paris", *rec.EventLocation)
}

func TestRunFetchFailureAbortsWholeRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := memory.NewStore()
	o := New(ics.NewFetcher(srv.URL, 5*time.Second), store.Events(), sydney(t), aprilNow)

	report := o.Run(context.Background())
	require.True(t, report.Failed())

	var ferr *ics.FetchError
	assert.ErrorAs(t, report.Err, &ferr)
	assert.Zero(t, report.Inserted)
}

// failingEventStore wraps a real store but rejects upserts for one name.
type failingEventStore struct {
	storage.EventStore
	failName string
}

func (f *failingEventStore) Upsert(ctx context.Context, rec model.EventRecord) (model.UpsertOutcome, error) {
	if rec.EventName == f.failName {
		return "", fmt.Errorf("storage unavailable")
	}
	return f.EventStore.Upsert(ctx, rec)
}

func TestRunIsolatesRecordFailures(t *testing.T) {
	feed := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:a@example.com
DTSTART:20240406T020000Z
SUMMARY:UFC 299
END:VEVENT
BEGIN:VEVENT
UID:b@example.com
DTSTART:20240414T020000Z
SUMMARY:UFC 300
END:VEVENT
END:VCALENDAR
`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.ReplaceAll(feed, "\n", "\r\n")))
	}))
	defer srv.Close()

	store := memory.NewStore()
	events := &failingEventStore{EventStore: store.Events(), failName: "UFC 299"}
	o := New(ics.NewFetcher(srv.URL, 5*time.Second), events, sydney(t), aprilNow)

	report := o.Run(context.Background())
	require.False(t, report.Failed())

	// The bad record is reported; the rest of the batch still lands.
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "UFC 299", report.Failures[0].EventName)
	assert.Equal(t, 1, report.Inserted)

	_, err := store.Events().FindByName(context.Background(), "UFC 300")
	assert.NoError(t, err)
}
