// Package localstore persists the small amount of per-register state that
// must survive a restart: which register this device is, the watermark of the
// last orders fetch, and receipts that failed to print.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

var ErrNotFound = errors.New("localstore: key not found")

const (
	registerKey          = "register:key"
	ordersLastFetchedKey = "orders:last_fetched"
	failedPrintsKey      = "prints:failed"
)

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// RegisterKey is the credential tying this device to a configured register.
func (s *Store) RegisterKey(ctx context.Context) (string, error) {
	key, err := s.client.Get(ctx, registerKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return key, nil
}

func (s *Store) SetRegisterKey(ctx context.Context, key string) error {
	if err := s.client.Set(ctx, registerKey, key, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *Store) ClearRegisterKey(ctx context.Context) error {
	if err := s.client.Del(ctx, registerKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// OrdersLastFetched is the watermark up to which placed orders have been seen.
func (s *Store) OrdersLastFetched(ctx context.Context) (time.Time, error) {
	raw, err := s.client.Get(ctx, ordersLastFetchedKey).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("redis get failed: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse watermark failed: %w", err)
	}
	return t, nil
}

func (s *Store) SetOrdersLastFetched(ctx context.Context, t time.Time) error {
	if err := s.client.Set(ctx, ordersLastFetchedKey, t.Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// EnqueueFailedPrint appends a job to the failed-print queue.
func (s *Store) EnqueueFailedPrint(ctx context.Context, job domain.ReceiptJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal print job failed: %w", err)
	}
	if err := s.client.RPush(ctx, failedPrintsKey, data).Err(); err != nil {
		return fmt.Errorf("redis rpush failed: %w", err)
	}
	return nil
}

// FailedPrints returns the whole queue in enqueue order.
func (s *Store) FailedPrints(ctx context.Context) ([]domain.ReceiptJob, error) {
	raw, err := s.client.LRange(ctx, failedPrintsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange failed: %w", err)
	}

	jobs := make([]domain.ReceiptJob, 0, len(raw))
	for _, item := range raw {
		var job domain.ReceiptJob
		if err := json.Unmarshal([]byte(item), &job); err != nil {
			return nil, fmt.Errorf("unmarshal print job failed: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// ReplaceFailedPrints atomically swaps the queue contents. The retry loop
// reads the queue, attempts each job, then writes back what is still failing.
func (s *Store) ReplaceFailedPrints(ctx context.Context, jobs []domain.ReceiptJob) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, failedPrintsKey)
	for _, job := range jobs {
		data, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("marshal print job failed: %w", err)
		}
		pipe.RPush(ctx, failedPrintsKey, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

func (s *Store) FailedPrintCount(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, failedPrintsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis llen failed: %w", err)
	}
	return int(n), nil
}
