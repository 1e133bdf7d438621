package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fightcal/internal/model"
)

func TestExpandWithinPassesThroughNonRecurring(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC)

	events := []model.Event{
		{Name: "one-off", Start: time.Date(2024, 4, 14, 2, 0, 0, 0, time.UTC)},
	}

	got := ExpandWithin(events, start, end)
	require.Len(t, got, 1)
	assert.Equal(t, events[0], got[0])
}

func TestExpandWithinExpandsWeeklyRule(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC)

	events := []model.Event{{
		Name:     "weekly show",
		Start:    time.Date(2024, 4, 6, 2, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=WEEKLY;COUNT=4",
	}}

	got := ExpandWithin(events, start, end)
	require.Len(t, got, 4)

	for i, ev := range got {
		want := time.Date(2024, 4, 6, 2, 0, 0, 0, time.UTC).AddDate(0, 0, 7*i)
		assert.True(t, ev.Start.Equal(want), "occurrence %d: got %s want %s", i, ev.Start, want)
		assert.Equal(t, "weekly show", ev.Name)
		assert.Empty(t, ev.RawRRule)
	}
}

func TestExpandWithinHonorsExDates(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC)

	events := []model.Event{{
		Name:     "weekly show",
		Start:    time.Date(2024, 4, 6, 2, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=WEEKLY;COUNT=4",
		ExDates:  []time.Time{time.Date(2024, 4, 13, 2, 0, 0, 0, time.UTC)},
	}}

	got := ExpandWithin(events, start, end)
	require.Len(t, got, 3)
	for _, ev := range got {
		assert.False(t, ev.Start.Equal(events[0].ExDates[0]))
	}
}

func TestExpandWithinBadRuleKeepsBaseEvent(t *testing.T) {
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC)

	events := []model.Event{{
		Name:     "broken",
		Start:    time.Date(2024, 4, 6, 2, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=NONSENSE",
	}}

	got := ExpandWithin(events, start, end)
	require.Len(t, got, 1)
	assert.Equal(t, "broken", got[0].Name)
}
