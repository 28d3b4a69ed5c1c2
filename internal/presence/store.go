package presence

import (
	"context"
	"time"

	id "carelink/pkg/domain"
)

// EventStore persists presence events.
//
// Implementations return sentinel errors for infrastructure facts.
type EventStore interface {
	CreateEvent(ctx context.Context, event Event) error
	// ListEventsByAdult returns the adult's events newest-first.
	ListEventsByAdult(ctx context.Context, adultID id.AdultID) ([]Event, error)
}

// ExcursionStore persists outdoor excursions.
type ExcursionStore interface {
	CreateExcursion(ctx context.Context, excursion Excursion) error
	FindExcursionByID(ctx context.Context, excursionID id.RecordID) (Excursion, error)
	// CloseExcursion sets the return timestamp and elapsed duration on an open
	// excursion. Returns sentinel.ErrInvalidState when already closed and
	// sentinel.ErrNotFound when absent.
	CloseExcursion(ctx context.Context, excursionID id.RecordID, returnedAt time.Time, elapsedSeconds int64) (Excursion, error)
	ListExcursionsByAdult(ctx context.Context, adultID id.AdultID) ([]Excursion, error)
}
