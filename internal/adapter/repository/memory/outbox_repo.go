package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stages an event. Events without an ID get a UUID.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	e := *event
	return t.stage(func(s *Store) {
		s.outbox = append(s.outbox, &e)
	})
}

// GetUnpublished returns unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var events []*domain.OutboxEvent
	for _, e := range r.store.outbox {
		if e.Published {
			continue
		}
		c := *e
		events = append(events, &c)
		if limit > 0 && len(events) == limit {
			break
		}
	}
	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.outbox {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
			return nil
		}
	}
	return nil
}
