package printing

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tabin-ltd/kiosk/internal/domain"
	"github.com/tabin-ltd/kiosk/internal/localstore"
	"github.com/tabin-ltd/kiosk/internal/orders"
)

// OrderLister supplies the backfill query on startup.
type OrderLister interface {
	ListPlacedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
}

// Worker prints receipts for orders placed elsewhere (other registers or
// online) by consuming the orders topic. The localstore watermark records how
// far it has seen, so a restart backfills the gap from the order store before
// consuming live events.
type Worker struct {
	register   *domain.Register
	dispatcher *Dispatcher
	store      *localstore.Store
	lister     OrderLister
	reader     *kafka.Reader
	now        func() time.Time
}

func NewWorker(register *domain.Register, dispatcher *Dispatcher, store *localstore.Store, lister OrderLister, brokers ...string) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    orders.Topic,
		GroupID:  "kiosk-printing-" + register.ID,
		MaxBytes: 10e6, // 10MB
	})
	return &Worker{
		register:   register,
		dispatcher: dispatcher,
		store:      store,
		lister:     lister,
		reader:     reader,
		now:        time.Now,
	}
}

func (w *Worker) Run(ctx context.Context) {
	w.backfill(ctx)

	for {
		if ctx.Err() != nil {
			return
		}
		w.processMessage(ctx)
	}
}

func (w *Worker) Close() {
	if err := w.reader.Close(); err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

// backfill prints anything placed between the watermark and now that this
// register missed while it was down.
func (w *Worker) backfill(ctx context.Context) {
	now := w.now()

	since, err := w.store.OrdersLastFetched(ctx)
	if errors.Is(err, localstore.ErrNotFound) {
		// First run: start the watermark now, nothing to backfill.
		if e2 := w.store.SetOrdersLastFetched(ctx, now); e2 != nil {
			log.Printf("failed to initialize orders watermark: %v", e2)
		}
		return
	}
	if err != nil {
		log.Printf("failed to read orders watermark: %v", err)
		return
	}

	placed, err := w.lister.ListPlacedBetween(ctx, since, now)
	if err != nil {
		log.Printf("failed to backfill orders: %v", err)
		return
	}

	for i := range placed {
		w.printForeignOrder(ctx, &placed[i])
	}

	if err := w.store.SetOrdersLastFetched(ctx, now); err != nil {
		log.Printf("failed to advance orders watermark: %v", err)
	}
}

func (w *Worker) processMessage(ctx context.Context) {
	m, err := w.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading order message: %v", err)
		return
	}

	var order domain.Order
	if err := json.Unmarshal(m.Value, &order); err != nil {
		log.Printf("error parsing order message: %v", err)
		return
	}

	w.printForeignOrder(ctx, &order)

	if err := w.store.SetOrdersLastFetched(ctx, w.now()); err != nil {
		log.Printf("failed to advance orders watermark: %v", err)
	}
}

// printForeignOrder prints an order from another source on printers opted in
// to it. Orders this register placed itself were already printed at
// submission time.
func (w *Worker) printForeignOrder(ctx context.Context, order *domain.Order) {
	if order.RegisterID == w.register.ID {
		return
	}

	for _, printer := range w.register.Printers {
		if !printer.PrintAllOrderReceipts && !printer.PrintOnlineOrderReceipts {
			continue
		}
		if printer.PrintOnlineOrderReceipts && !printer.PrintAllOrderReceipts && !order.OnlineOrder {
			continue
		}

		subset := &domain.Register{ID: w.register.ID, Printers: []domain.RegisterPrinter{printer}}
		w.dispatcher.Dispatch(ctx, order, subset)
	}
}
