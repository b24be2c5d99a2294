package printing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabin-ltd/kiosk/internal/domain"
	"github.com/tabin-ltd/kiosk/internal/localstore"
)

type fakePrinter struct {
	mu     sync.Mutex
	jobs   []domain.ReceiptJob
	failOn map[string]bool
}

func (p *fakePrinter) PrintReceipt(ctx context.Context, job domain.ReceiptJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	if p.failOn[job.Order.ID] {
		return errors.New("printer offline")
	}
	return nil
}

type countingErrlog struct {
	mu      sync.Mutex
	reports []string
}

func (c *countingErrlog) Report(message string, context map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, message)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakePrinter, *localstore.Store, *countingErrlog) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := localstore.New(client)
	printer := &fakePrinter{failOn: map[string]bool{}}
	errs := &countingErrlog{}

	return NewDispatcher(printer, store, errs), printer, store, errs
}

func testRegister() *domain.Register {
	return &domain.Register{
		ID: "reg-1",
		Printers: []domain.RegisterPrinter{
			{ID: "printer-1", Address: "192.168.1.50", CustomerPrinter: true},
		},
	}
}

func TestDispatch_FailureQueues(t *testing.T) {
	d, printer, store, _ := newTestDispatcher(t)
	printer.failOn["order-1"] = true

	d.Dispatch(context.Background(), &domain.Order{ID: "order-1"}, testRegister())

	jobs, err := store.FailedPrints(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "order-1", jobs[0].Order.ID)
	assert.Equal(t, 1, jobs[0].Attempts)
}

func TestDispatch_SuccessDoesNotQueue(t *testing.T) {
	d, _, store, _ := newTestDispatcher(t)

	d.Dispatch(context.Background(), &domain.Order{ID: "order-1"}, testRegister())

	n, err := store.FailedPrintCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRetry_SuccessRemovesFromQueue(t *testing.T) {
	d, printer, store, _ := newTestDispatcher(t)
	ctx := context.Background()

	require.NoError(t, store.EnqueueFailedPrint(ctx, domain.ReceiptJob{ID: "job-1", Order: domain.Order{ID: "order-1"}, Attempts: 1}))

	d.retryFailedPrints(ctx)

	n, err := store.FailedPrintCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, printer.jobs, 1)
}

func TestRetry_FailureBumpsAttemptsWithoutRequeue(t *testing.T) {
	d, printer, store, _ := newTestDispatcher(t)
	ctx := context.Background()
	printer.failOn["order-1"] = true

	require.NoError(t, store.EnqueueFailedPrint(ctx, domain.ReceiptJob{ID: "job-1", Order: domain.Order{ID: "order-1"}, Attempts: 1}))

	d.retryFailedPrints(ctx)
	d.retryFailedPrints(ctx)

	jobs, err := store.FailedPrints(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1, "a failing retry keeps exactly one queue entry")
	assert.Equal(t, 3, jobs[0].Attempts)
}

func TestRetry_ThresholdTriggersReport(t *testing.T) {
	d, printer, store, errs := newTestDispatcher(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		printer.failOn[id] = true
		require.NoError(t, store.EnqueueFailedPrint(ctx, domain.ReceiptJob{ID: id, Order: domain.Order{ID: id}, Attempts: 1}))
	}

	d.retryFailedPrints(ctx)

	errs.mu.Lock()
	defer errs.mu.Unlock()
	assert.Contains(t, errs.reports, "Failed receipt prints passed threshold")
}

func TestQueue_ConcurrentEnqueueAndRetryLosesNothing(t *testing.T) {
	d, printer, store, _ := newTestDispatcher(t)
	ctx := context.Background()

	const orders = 10
	ids := make([]string, orders)
	for i := range ids {
		ids[i] = "order-" + string(rune('a'+i))
		printer.failOn[ids[i]] = true
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			d.Dispatch(ctx, &domain.Order{ID: id}, testRegister())
		}(id)
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.retryFailedPrints(ctx)
		}()
	}
	wg.Wait()
	d.retryFailedPrints(ctx)

	// Every print keeps failing, so every dispatched order must still be
	// queued regardless of how enqueues interleave with retry cycles.
	jobs, err := store.FailedPrints(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, orders)
}

func TestPrintSalesSummary_CustomerPrintersOnly(t *testing.T) {
	d, printer, _, _ := newTestDispatcher(t)

	register := testRegister()
	register.Printers = append(register.Printers, domain.RegisterPrinter{ID: "kitchen", KitchenPrinter: true})

	require.NoError(t, d.PrintSalesSummary(context.Background(), register, "SALES 2026-08-31"))

	require.Len(t, printer.jobs, 1)
	assert.Equal(t, "printer-1", printer.jobs[0].PrinterID)
	assert.Equal(t, "SALES 2026-08-31", printer.jobs[0].Summary)
}
