package presence

import (
	"context"
	"sync"
	"time"

	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
)

// MemoryEventStore keeps presence events in memory, newest last.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

func (s *MemoryEventStore) CreateEvent(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryEventStore) ListEventsByAdult(_ context.Context, adultID id.AdultID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	// Reverse insertion order gives newest-first.
	for i := len(s.events) - 1; i >= 0; i-- {
		for _, eventAdult := range s.events[i].AdultIDs {
			if eventAdult == adultID {
				out = append(out, s.events[i])
				break
			}
		}
	}
	return out, nil
}

// MemoryExcursionStore keeps excursions in memory.
type MemoryExcursionStore struct {
	mu         sync.RWMutex
	excursions map[id.RecordID]Excursion
	order      []id.RecordID
}

func NewMemoryExcursionStore() *MemoryExcursionStore {
	return &MemoryExcursionStore{excursions: make(map[id.RecordID]Excursion)}
}

func (s *MemoryExcursionStore) CreateExcursion(_ context.Context, excursion Excursion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.excursions[excursion.ID]; ok {
		return sentinel.ErrConflict
	}
	s.excursions[excursion.ID] = excursion
	s.order = append(s.order, excursion.ID)
	return nil
}

func (s *MemoryExcursionStore) FindExcursionByID(_ context.Context, excursionID id.RecordID) (Excursion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if excursion, ok := s.excursions[excursionID]; ok {
		return excursion, nil
	}
	return Excursion{}, sentinel.ErrNotFound
}

func (s *MemoryExcursionStore) CloseExcursion(_ context.Context, excursionID id.RecordID, returnedAt time.Time, elapsedSeconds int64) (Excursion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	excursion, ok := s.excursions[excursionID]
	if !ok {
		return Excursion{}, sentinel.ErrNotFound
	}
	if excursion.ReturnedAt != nil {
		return Excursion{}, sentinel.ErrInvalidState
	}
	excursion.ReturnedAt = &returnedAt
	excursion.ElapsedOutside = &elapsedSeconds
	s.excursions[excursionID] = excursion
	return excursion, nil
}

func (s *MemoryExcursionStore) ListExcursionsByAdult(_ context.Context, adultID id.AdultID) ([]Excursion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Excursion
	for _, excursionID := range s.order {
		if excursion := s.excursions[excursionID]; excursion.AdultID == adultID {
			out = append(out, excursion)
		}
	}
	return out, nil
}
