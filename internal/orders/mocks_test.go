package orders

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

type mockRepository struct {
	mu sync.Mutex

	inserted    []*domain.Order
	insertErr   error
	counter     int
	counterDays []string

	unpublished []*OutboxEvent
	stuck       []*OutboxEvent
	published   []int64
	listed      []domain.Order
}

func (m *mockRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, order)
	return nil
}

func (m *mockRepository) NextOrderNumber(ctx context.Context, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	m.counterDays = append(m.counterDays, day)
	return m.counter, nil
}

func (m *mockRepository) ListPlacedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	return m.listed, nil
}

func (m *mockRepository) UnpublishedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	return m.unpublished, nil
}

func (m *mockRepository) StuckEvents(ctx context.Context, olderThan time.Duration) ([]*OutboxEvent, error) {
	return m.stuck, nil
}

func (m *mockRepository) MarkEventPublished(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, id)
	return nil
}

func (m *mockRepository) Close() error { return nil }

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (w *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}
