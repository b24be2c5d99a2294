package printing

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tabin-ltd/kiosk/internal/domain"
	"github.com/tabin-ltd/kiosk/internal/errlog"
	"github.com/tabin-ltd/kiosk/internal/localstore"
)

const (
	retryInterval  = 20 * time.Second
	queueThreshold = 3
)

// Dispatcher fans one placed order out to every configured printer. Failures
// land in the durable failed-print queue and never surface to checkout.
type Dispatcher struct {
	printer ReceiptPrinter
	store   *localstore.Store
	errors  errlog.Logger

	// queueMu serializes enqueues against the retry loop's read-then-replace
	// of the queue; an enqueue landing between the two would otherwise be
	// dropped by the replace.
	queueMu       sync.Mutex
	retryInterval time.Duration
}

func NewDispatcher(printer ReceiptPrinter, store *localstore.Store, errors errlog.Logger) *Dispatcher {
	return &Dispatcher{
		printer:       printer,
		store:         store,
		errors:        errors,
		retryInterval: retryInterval,
	}
}

// Dispatch prints the order on every matching register printer. Kitchen
// printers always print locally placed orders; customer printers follow the
// register's receipt setting upstream of this call.
func (d *Dispatcher) Dispatch(ctx context.Context, order *domain.Order, register *domain.Register) {
	for _, printer := range register.Printers {
		job := domain.ReceiptJob{
			ID:          uuid.NewString(),
			PrinterID:   printer.ID,
			PrinterType: printer.Type,
			Address:     printer.Address,
			Kitchen:     printer.KitchenPrinter,
			Order:       *order,
		}

		if err := d.printer.PrintReceipt(ctx, job); err != nil {
			log.Printf("receipt print failed, queueing: printer=%s order=%s err=%v", printer.ID, order.ID, err)
			d.queueFailed(ctx, job)
		}
	}
}

func (d *Dispatcher) queueFailed(ctx context.Context, job domain.ReceiptJob) {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()

	job.Attempts = 1
	if err := d.store.EnqueueFailedPrint(ctx, job); err != nil {
		d.errors.Report("Failed to queue failed print", map[string]interface{}{"orderId": job.Order.ID, "error": err.Error()})
	}
}

// RunRetryLoop drains the failed-print queue on a fixed interval until ctx is
// cancelled. A retry that fails again keeps its place in the queue with the
// attempt count bumped; it is never enqueued a second time.
func (d *Dispatcher) RunRetryLoop(ctx context.Context) {
	ticker := time.NewTicker(d.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.retryFailedPrints(ctx)
		}
	}
}

func (d *Dispatcher) retryFailedPrints(ctx context.Context) {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()

	jobs, err := d.store.FailedPrints(ctx)
	if err != nil {
		d.errors.Report("Failed to read failed print queue", map[string]interface{}{"error": err.Error()})
		return
	}
	if len(jobs) == 0 {
		return
	}

	if len(jobs) > queueThreshold {
		d.errors.Report("Failed receipt prints passed threshold", map[string]interface{}{"queued": len(jobs)})
	}

	var stillFailing []domain.ReceiptJob
	for _, job := range jobs {
		if err := d.printer.PrintReceipt(ctx, job); err != nil {
			job.Attempts++
			stillFailing = append(stillFailing, job)
			continue
		}
	}

	if err := d.store.ReplaceFailedPrints(ctx, stillFailing); err != nil {
		d.errors.Report("Failed to update failed print queue", map[string]interface{}{"error": err.Error()})
	}
}

// PrintSalesSummary sends a rendered end-of-day sales report to the
// register's customer printers.
func (d *Dispatcher) PrintSalesSummary(ctx context.Context, register *domain.Register, summary string) error {
	for _, printer := range register.Printers {
		if !printer.CustomerPrinter {
			continue
		}
		job := domain.ReceiptJob{
			ID:        uuid.NewString(),
			PrinterID: printer.ID,
			Address:   printer.Address,
			Summary:   summary,
		}
		if err := d.printer.PrintReceipt(ctx, job); err != nil {
			return fmt.Errorf("print sales summary: %w", err)
		}
	}
	return nil
}
