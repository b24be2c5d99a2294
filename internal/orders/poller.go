package orders

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Topic carries every placed order; the printing worker on each register
// consumes it.
const Topic = "kiosk-orders"

// kafkaWriter is the slice of kafka.Writer the poller uses.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// OutboxPoller drains the outbox table to kafka. A second slower tick
// re-publishes events that have sat unpublished for too long, which covers
// crashes between publish and mark.
type OutboxPoller struct {
	eventTick    time.Duration
	recoveryTick time.Duration
	stuckAge     time.Duration
	repo         Repository
	writer       kafkaWriter
}

func NewOutboxPoller(repo Repository, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OutboxPoller{
		eventTick:    time.Second,
		recoveryTick: 30 * time.Second,
		stuckAge:     time.Minute,
		repo:         repo,
		writer:       w,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	recoveryTicker := time.NewTicker(p.recoveryTick)
	defer eventTicker.Stop()
	defer recoveryTicker.Stop()

	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-recoveryTicker.C:
			p.recoverStuckEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.UnpublishedEvents(ctx, 100)
	if err != nil {
		log.Printf("failed to fetch outbox events: %v", err)
		return
	}

	p.publish(ctx, events)
}

func (p *OutboxPoller) recoverStuckEvents(ctx context.Context) {
	events, err := p.repo.StuckEvents(ctx, p.stuckAge)
	if err != nil {
		log.Printf("failed to fetch stuck outbox events: %v", err)
		return
	}

	for _, event := range events {
		log.Printf("recovering stuck outbox event id=%d order=%s", event.ID, event.AggregateID)
	}
	p.publish(ctx, events)
}

func (p *OutboxPoller) publish(ctx context.Context, events []*OutboxEvent) {
	for _, event := range events {
		msg := kafka.Message{
			Key:   []byte(event.AggregateID),
			Value: event.Payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
			},
		}

		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("failed to publish outbox event id=%d: %v", event.ID, err)
			continue
		}

		if err := p.repo.MarkEventPublished(ctx, event.ID); err != nil {
			log.Printf("failed to mark outbox event published id=%d: %v", event.ID, err)
		}
	}
}
