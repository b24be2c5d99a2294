package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

// OutboxEvent is one order event waiting to be published to kafka. The row is
// written in the same transaction as the order, so an order is never placed
// without its event.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// Repository persists placed orders and their outbox events.
type Repository interface {
	InsertOrder(ctx context.Context, order *domain.Order) error
	NextOrderNumber(ctx context.Context, day string) (int, error)
	ListPlacedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
	UnpublishedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	StuckEvents(ctx context.Context, olderThan time.Duration) ([]*OutboxEvent, error)
	MarkEventPublished(ctx context.Context, id int64) error
	Close() error
}

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	repo := &postgresRepository{db: db}
	if err := repo.runMigrations(cred); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *postgresRepository) runMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// InsertOrder writes the order and its outbox event in one transaction.
func (r *postgresRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, status, register_id, restaurant_id, placed_at, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.Status, order.RegisterID, order.RestaurantID, order.PlacedAtUTC, payload)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox_events (aggregate_id, event_type, payload)
		 VALUES ($1, $2, $3)`,
		order.ID, "order.placed", payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NextOrderNumber increments and returns the daily order counter. The counter
// resets simply by keying on the day.
func (r *postgresRepository) NextOrderNumber(ctx context.Context, day string) (int, error) {
	var counter int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO order_counters (day, counter) VALUES ($1, 1)
		 ON CONFLICT (day) DO UPDATE SET counter = order_counters.counter + 1
		 RETURNING counter`,
		day).Scan(&counter)
	if err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return counter, nil
}

func (r *postgresRepository) ListPlacedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payload FROM orders WHERE placed_at > $1 AND placed_at <= $2 ORDER BY placed_at`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		var order domain.Order
		if err := json.Unmarshal(payload, &order); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *postgresRepository) UnpublishedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM outbox_events WHERE published = FALSE ORDER BY id LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// StuckEvents returns unpublished events older than the given age. Normal
// publishing should drain the outbox within seconds, so anything older needs
// the recovery path.
func (r *postgresRepository) StuckEvents(ctx context.Context, olderThan time.Duration) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM outbox_events WHERE published = FALSE AND created_at < NOW() - $1::interval ORDER BY id`,
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())))
	if err != nil {
		return nil, fmt.Errorf("fetch stuck events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*OutboxEvent, error) {
	var events []*OutboxEvent
	for rows.Next() {
		var event OutboxEvent
		if err := rows.Scan(&event.ID, &event.AggregateID, &event.EventType, &event.Payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}

func (r *postgresRepository) MarkEventPublished(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET published = TRUE, published_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark event published: %w", err)
	}
	return nil
}

func (r *postgresRepository) Close() error {
	return r.db.Close()
}
