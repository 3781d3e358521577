package ports

import (
	"context"

	"github.com/credgem/credgem/internal/domain/events"
)

// EventPublisher hands domain events to the outside world. The default
// implementation writes them to the outbox table inside the caller's
// database transaction; a poller ships them later.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch publishes several events atomically.
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}

// OutboxRepository stores events pending delivery. Save must run in the
// same database transaction as the business mutation that raised the
// event.
type OutboxRepository interface {
	Save(ctx context.Context, event events.DomainEvent) error

	// FindUnpublished returns stored events not yet delivered, oldest
	// first.
	FindUnpublished(ctx context.Context, limit int) ([]StoredEvent, error)

	MarkPublished(ctx context.Context, eventID string) error

	MarkFailed(ctx context.Context, eventID string, reason string) error
}

// StoredEvent is an outbox row: the serialized event plus its routing
// metadata.
type StoredEvent struct {
	EventID     string
	EventType   string
	AggregateID string
	Payload     []byte
}
