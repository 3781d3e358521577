package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/events"
)

var (
	_ ports.OutboxRepository = (*OutboxRepository)(nil)
	_ ports.EventPublisher   = (*OutboxPublisher)(nil)
)

// OutboxRepository stores domain events in the outbox_events table.
// Save is expected to run inside the caller's unit-of-work transaction,
// which is what makes the outbox pattern atomic with the state change.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates the repository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

func (r *OutboxRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Save serializes the event and inserts it as unpublished.
func (r *OutboxRepository) Save(ctx context.Context, event events.DomainEvent) error {
	q := r.getQuerier(ctx)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}

	query := `
		INSERT INTO outbox_events (
			event_id, event_type, aggregate_id, payload, occurred_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = q.Exec(ctx, query,
		event.EventID(),
		event.EventType(),
		event.AggregateID(),
		payload,
		event.OccurredAt(),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}

	return nil
}

// FindUnpublished returns undelivered events, oldest first. Rows are
// locked with SKIP LOCKED so concurrent pollers never ship the same
// event twice.
func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]ports.StoredEvent, error) {
	q := r.getQuerier(ctx)

	query := `
		SELECT event_id, event_type, aggregate_id, payload
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY occurred_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find unpublished events: %w", err)
	}
	defer rows.Close()

	var stored []ports.StoredEvent
	for rows.Next() {
		var ev ports.StoredEvent
		if err := rows.Scan(&ev.EventID, &ev.EventType, &ev.AggregateID, &ev.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		stored = append(stored, ev)
	}
	return stored, rows.Err()
}

// MarkPublished stamps the delivery time.
func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID string) error {
	q := r.getQuerier(ctx)

	_, err := q.Exec(ctx,
		"UPDATE outbox_events SET published_at = $2 WHERE event_id = $1",
		eventID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark event published: %w", err)
	}
	return nil
}

// MarkFailed records the delivery error and bumps the attempt counter.
func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID string, reason string) error {
	q := r.getQuerier(ctx)

	_, err := q.Exec(ctx,
		"UPDATE outbox_events SET attempts = attempts + 1, last_error = $2 WHERE event_id = $1",
		eventID, reason,
	)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return nil
}

// OutboxPublisher implements ports.EventPublisher by writing to the
// outbox. Because it goes through the injected transaction context, an
// aborted business transaction also discards its events.
type OutboxPublisher struct {
	outbox ports.OutboxRepository
}

// NewOutboxPublisher creates the publisher.
func NewOutboxPublisher(outbox ports.OutboxRepository) *OutboxPublisher {
	return &OutboxPublisher{outbox: outbox}
}

// Publish stores a single event.
func (p *OutboxPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.outbox.Save(ctx, event)
}

// PublishBatch stores all events; the surrounding transaction makes the
// batch atomic.
func (p *OutboxPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	for _, event := range batch {
		if err := p.outbox.Save(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
