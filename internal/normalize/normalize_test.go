package normalize

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fightcal/internal/model"
)

func sydney(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)
	return loc
}

func TestRecordScenario(t *testing.T) {
	// 2024-04-14T02:00Z is 12:00 AEST (UTC+10, daylight saving over).
	ev := model.Event{
		Name:        "UFC 300",
		Start:       time.Date(2024, 4, 14, 2, 0, 0, 0, time.UTC),
		Description: "Watch at https://example.com/watch",
		Location:    "Las Vegas",
	}

	rec := Record(ev, sydney(t))

	assert.Equal(t, "UFC 300", rec.EventName)
	assert.Equal(t, "2024-04-14 12:00:00", rec.EventDate.Format(CivilLayout))
	require.NotNil(t, rec.EventURL)
	assert.Equal(t, "https://example.com/watch", *rec.EventURL)
	assert.Equal(t, "Watch at https://example.com/watch", rec.EventDescription)
	require.NotNil(t, rec.EventLocation)
	assert.Equal(t, "Las Vegas", *rec.EventLocation)
}

func TestRecordDaylightSaving(t *testing.T) {
	// January is AEDT (UTC+11).
	ev := model.Event{
		Name:  "UFC 297",
		Start: time.Date(2024, 1, 21, 3, 0, 0, 0, time.UTC),
	}

	rec := Record(ev, sydney(t))
	assert.Equal(t, "2024-01-21 14:00:00", rec.EventDate.Format(CivilLayout))
}

func TestRecordURLExtraction(t *testing.T) {
	loc := sydney(t)
	base := model.Event{Name: "ev", Start: time.Now()}

	t.Run("single url", func(t *testing.T) {
		ev := base
		ev.Description = "Stream: http://example.com/live tonight"
		rec := Record(ev, loc)
		require.NotNil(t, rec.EventURL)
		assert.Equal(t, "http://example.com/live", *rec.EventURL)
	})

	t.Run("no url", func(t *testing.T) {
		ev := base
		ev.Description = "no links here"
		rec := Record(ev, loc)
		assert.Nil(t, rec.EventURL)
	})

	t.Run("multiple urls takes first", func(t *testing.T) {
		ev := base
		ev.Description = "see https://first.example.com and https://second.example.com"
		rec := Record(ev, loc)
		require.NotNil(t, rec.EventURL)
		assert.Equal(t, "https://first.example.com", *rec.EventURL)
	})
}

func TestRecordAbsentFields(t *testing.T) {
	ev := model.Event{
		Name:  "bare event",
		Start: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	rec := Record(ev, sydney(t))
	assert.Equal(t, "", rec.EventDescription)
	assert.Nil(t, rec.EventLocation)
	assert.Nil(t, rec.EventURL)
}
