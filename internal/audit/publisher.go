package audit

import (
	"context"
	"time"

	id "carelink/pkg/domain"
)

// Sink accepts audit events. Implementations: store-backed Publisher,
// Kafka-backed KafkaPublisher.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// Publisher captures structured audit events into a Store so tests and the
// single-node deployment can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ID.IsNil() {
		event.ID = id.NewRecordID()
	}
	return p.store.Append(ctx, event)
}

// List returns the events recorded for one account.
func (p *Publisher) List(ctx context.Context, accountID string) ([]Event, error) {
	return p.store.ListByAccount(ctx, accountID)
}
