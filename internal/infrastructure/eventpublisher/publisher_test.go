package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
	"github.com/iho/gowallet/internal/usecase/mocks"
)

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: domain.EventTypeWalletItemCreated}},
	}
	pub := &stubPublisher{}
	obs := &stubObserver{}
	ep := newTestPublisher(repo, pub)
	ep.observer = obs

	require.NoError(t, ep.processEvents(context.Background()))

	require.Len(t, pub.published, 1)
	assert.Equal(t, []string{"evt-1"}, repo.marked)
	assert.Equal(t, []string{domain.EventTypeWalletItemCreated}, obs.published)
}

func TestProcessEventsContinuesOnPublishError(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: "type"},
			{ID: "evt-2", EventType: "type"},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	obs := &stubObserver{}
	ep := newTestPublisher(repo, pub)
	ep.observer = obs

	require.NoError(t, ep.processEvents(context.Background()))

	require.Len(t, pub.published, 1)
	assert.Equal(t, "evt-2", pub.published[0].ID)
	assert.Equal(t, []string{"evt-2"}, repo.marked)
	assert.Equal(t, 1, obs.failed)
}

func TestProcessEventsReturnsRepositoryError(t *testing.T) {
	repo := &stubOutboxRepo{err: errors.New("db down")}
	ep := newTestPublisher(repo, &stubPublisher{})

	assert.EqualError(t, ep.processEvents(context.Background()), "db down")
}

func TestProcessEventsDrainsWalletOutbox(t *testing.T) {
	outbox := mocks.NewMockOutboxRepository()
	tx := &mocks.MockTransaction{}
	require.NoError(t, outbox.Create(context.Background(), tx, &domain.OutboxEvent{ID: "a", EventType: domain.EventTypeWalletCreated}))
	require.NoError(t, outbox.Create(context.Background(), tx, &domain.OutboxEvent{ID: "b", EventType: domain.EventTypeWalletItemDeleted}))

	pub := &stubPublisher{}
	ep := NewEventPublisher(Config{OutboxRepo: outbox, Publisher: pub, Logger: zerolog.Nop(), BatchSize: 10})

	require.NoError(t, ep.processEvents(context.Background()))
	require.NoError(t, ep.processEvents(context.Background()))

	assert.Len(t, pub.published, 2)
	remaining, err := outbox.GetUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	ep := newTestPublisher(&stubOutboxRepo{}, &stubPublisher{})
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestLogPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(zerolog.New(&buf))

	err := pub.Publish(context.Background(), &domain.OutboxEvent{
		ID:          "evt-9",
		EventType:   domain.EventTypeWalletValueSet,
		AggregateID: "w-1",
		Payload:     map[string]any{"value": "10.00"},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"event_id":"evt-9"`)
	assert.Contains(t, buf.String(), `"payload":{"value":"10.00"}`)
}

func newTestPublisher(repo usecase.OutboxRepository, pub *stubPublisher) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type stubOutboxRepo struct {
	events []*domain.OutboxEvent
	marked []string
	err    error
}

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}

type stubObserver struct {
	published []string
	failed    int
}

func (s *stubObserver) EventPublished(eventType string) { s.published = append(s.published, eventType) }
func (s *stubObserver) EventPublishFailed(string)       { s.failed++ }
