// Package memory provides an in-memory storage.Interface implementation.
// It backs tests and dry runs; semantics match the postgres store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fightcal/internal/model"
	"fightcal/internal/storage"
)

type store struct {
	events       *eventStore
	destinations *destinationStore
}

// NewStore creates a new in-memory storage interface.
func NewStore() storage.Interface {
	return &store{
		events:       &eventStore{records: make(map[string]model.EventRecord)},
		destinations: &destinationStore{set: make(map[model.Destination]struct{})},
	}
}

func (s *store) Events() storage.EventStore { return s.events }

func (s *store) Destinations() storage.DestinationStore { return s.destinations }

type eventStore struct {
	sync.RWMutex
	records map[string]model.EventRecord
}

func (s *eventStore) Upsert(_ context.Context, rec model.EventRecord) (model.UpsertOutcome, error) {
	s.Lock()
	defer s.Unlock()

	existing, ok := s.records[rec.EventName]
	if !ok {
		s.records[rec.EventName] = rec
		return model.OutcomeInserted, nil
	}
	if existing.Equal(rec) {
		return model.OutcomeNoChange, nil
	}
	s.records[rec.EventName] = rec
	return model.OutcomeUpdated, nil
}

func (s *eventStore) FindByName(_ context.Context, name string) (*model.EventRecord, error) {
	s.RLock()
	defer s.RUnlock()

	if rec, ok := s.records[name]; ok {
		return &rec, nil
	}
	return nil, storage.ErrNotFound
}

func (s *eventStore) EventsOn(_ context.Context, t time.Time) ([]model.EventRecord, error) {
	s.RLock()
	defer s.RUnlock()

	y, m, d := t.Date()
	out := make([]model.EventRecord, 0)
	for _, rec := range s.records {
		ry, rm, rd := rec.EventDate.Date()
		if ry == y && rm == m && rd == d {
			out = append(out, rec)
		}
	}
	sortByDate(out)
	return out, nil
}

func (s *eventStore) EventsInWeek(_ context.Context, t time.Time) ([]model.EventRecord, error) {
	s.RLock()
	defer s.RUnlock()

	weekStart := storage.WeekStart(t)
	weekEnd := weekStart.AddDate(0, 0, 7)

	out := make([]model.EventRecord, 0)
	for _, rec := range s.records {
		d := rec.EventDate
		if d.Before(weekStart) || !d.Before(weekEnd) {
			continue
		}
		out = append(out, rec)
	}
	sortByDate(out)
	return out, nil
}

func sortByDate(recs []model.EventRecord) {
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].EventDate.Before(recs[j].EventDate)
	})
}

type destinationStore struct {
	sync.RWMutex
	set map[model.Destination]struct{}
}

func (s *destinationStore) Add(_ context.Context, d model.Destination) error {
	s.Lock()
	defer s.Unlock()
	s.set[d] = struct{}{}
	return nil
}

func (s *destinationStore) Remove(_ context.Context, d model.Destination) error {
	s.Lock()
	defer s.Unlock()
	delete(s.set, d)
	return nil
}

func (s *destinationStore) List(_ context.Context) ([]model.Destination, error) {
	s.RLock()
	defer s.RUnlock()

	out := make([]model.Destination, 0, len(s.set))
	for d := range s.set {
		out = append(out, d)
	}
	return out, nil
}
