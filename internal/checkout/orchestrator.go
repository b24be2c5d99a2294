package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/tabin-ltd/kiosk/internal/cart"
	"github.com/tabin-ltd/kiosk/internal/domain"
	"github.com/tabin-ltd/kiosk/internal/eftpos"
	"github.com/tabin-ltd/kiosk/internal/errlog"
	"github.com/tabin-ltd/kiosk/internal/orders"
)

const redirectSeconds = 10

// OrderCreator submits a finished order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*domain.Order, error)
}

// ReceiptDispatcher prints receipts for a placed order. Dispatch failures
// must never surface here; the printing layer queues and retries on its own.
type ReceiptDispatcher interface {
	Dispatch(ctx context.Context, order *domain.Order, register *domain.Register)
}

// Orchestrator drives the payment surface for one register session: vendor
// dispatch, split payments, order submission and the redirect countdown.
type Orchestrator struct {
	mu    sync.Mutex
	state PaymentState

	cart     *cart.Service
	register *domain.Register
	terminal eftpos.Terminal
	creator  OrderCreator
	printer  ReceiptDispatcher
	errors   errlog.Logger
	userID   string

	// onRedirect returns the UI to the entry screen. Fired exactly once per
	// completed order, by countdown expiry or by an explicit continue.
	onRedirect func()

	countdown   *countdown
	tick        time.Duration
	finishOnce  *sync.Once
	lastReceipt string
}

func NewOrchestrator(
	cartSvc *cart.Service,
	register *domain.Register,
	terminal eftpos.Terminal,
	creator OrderCreator,
	printer ReceiptDispatcher,
	errors errlog.Logger,
	userID string,
	onRedirect func(),
) *Orchestrator {
	return &Orchestrator{
		state:      PaymentState{Kind: StateIdle},
		cart:       cartSvc,
		register:   register,
		terminal:   terminal,
		creator:    creator,
		printer:    printer,
		errors:     errors,
		userID:     userID,
		onRedirect: onRedirect,
		tick:       time.Second,
		finishOnce: &sync.Once{},
	}
}

func (o *Orchestrator) State() PaymentState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s PaymentState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// ConfirmOrRetryEftpos starts (or retries) a card transaction for the given
// amount. Every entry resets the attempt state first, so retry and first
// attempt are the same code path. The transaction is always created at the
// amount given, validated against the remaining balance at entry time.
func (o *Orchestrator) ConfirmOrRetryEftpos(ctx context.Context, amountCents int) error {
	remaining := o.cart.AmountRemaining()
	if err := validateAmount(amountCents, remaining); err != nil {
		return err
	}

	// Reset attempt state: outcome, message and delay flag all go back to
	// their entry values.
	o.setState(PaymentState{Kind: StateAwaitingCard})

	ref, err := o.terminal.CreateTransaction(ctx, amountCents, "Card.Purchase")
	if err != nil {
		o.setState(PaymentState{
			Kind:    StateEftposResult,
			Outcome: &eftpos.TransactionOutcome{Result: eftpos.ResultFail, Message: "Could not reach the payment terminal."},
		})
		return nil
	}

	outcome, err := o.terminal.PollForOutcome(ctx, ref, o.onTerminalProgress)
	if err != nil {
		o.setState(PaymentState{
			Kind:    StateEftposResult,
			Outcome: &eftpos.TransactionOutcome{Result: eftpos.ResultFail, Message: "Lost connection to the payment terminal."},
		})
		return nil
	}

	if outcome.Result != eftpos.ResultSuccess {
		o.setState(PaymentState{Kind: StateEftposResult, Outcome: outcome})
		return nil
	}

	o.cart.RecordPayment(domain.Payment{Type: domain.PaymentTypeEftpos, Amount: amountCents})
	o.mu.Lock()
	o.lastReceipt = outcome.Receipt
	o.mu.Unlock()

	if o.cart.AmountRemaining() > 0 {
		o.setState(PaymentState{Kind: StateEftposResult, Outcome: outcome, FullyPaid: false})
		return nil
	}

	o.submitOrder(ctx, domain.OrderStatusNew, true, outcome.Receipt, PaymentState{Kind: StateEftposResult, Outcome: outcome, FullyPaid: true})
	return nil
}

func (o *Orchestrator) onTerminalProgress(p eftpos.Progress) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Kind != StateAwaitingCard {
		return
	}
	if p.Delayed {
		o.state.Delayed = true
	}
	if p.Message != "" {
		o.state.ProcessMessage = p.Message
	}
}

// ConfirmCash records a cash payment. Overpayment is fine: the recorded
// amount is capped at the remaining balance and the rest is change.
func (o *Orchestrator) ConfirmCash(ctx context.Context, amountCents int) error {
	remaining := o.cart.AmountRemaining()
	if remaining <= 0 {
		return ErrNothingToPay
	}
	if amountCents <= 0 {
		return ErrInvalidAmount
	}

	change := 0
	recorded := amountCents
	if amountCents > remaining {
		change = amountCents - remaining
		recorded = remaining
	}

	o.cart.RecordPayment(domain.Payment{Type: domain.PaymentTypeCash, Amount: recorded})

	if o.cart.AmountRemaining() > 0 {
		o.setState(PaymentState{Kind: StateCashResult, Change: change, FullyPaid: false})
		return nil
	}

	o.submitOrder(ctx, domain.OrderStatusNew, true, "", PaymentState{Kind: StateCashResult, Change: change, FullyPaid: true})
	return nil
}

// ConfirmThirdParty records a marketplace payment (Uber Eats or Menulog)
// entered by an operator.
func (o *Orchestrator) ConfirmThirdParty(ctx context.Context, kind domain.PaymentType, amountCents int) error {
	switch kind {
	case domain.PaymentTypeUberEats:
		if !o.register.EnableUberEatsPayments {
			return ErrPaymentTypeDisabled
		}
	case domain.PaymentTypeMenulog:
		if !o.register.EnableMenulogPayments {
			return ErrPaymentTypeDisabled
		}
	default:
		return ErrPaymentTypeDisabled
	}

	remaining := o.cart.AmountRemaining()
	if err := validateAmount(amountCents, remaining); err != nil {
		return err
	}

	o.cart.RecordPayment(domain.Payment{Type: kind, Amount: amountCents})

	if o.cart.AmountRemaining() > 0 {
		o.setState(PaymentState{Kind: StateThirdPartyResult, ThirdParty: kind, FullyPaid: false})
		return nil
	}

	o.submitOrder(ctx, domain.OrderStatusNew, true, "", PaymentState{Kind: StateThirdPartyResult, ThirdParty: kind, FullyPaid: true})
	return nil
}

// AwaitThirdParty holds the surface while a marketplace order is confirmed
// on the vendor's own device, before the operator enters the amount.
func (o *Orchestrator) AwaitThirdParty(kind domain.PaymentType) {
	o.setState(PaymentState{Kind: StateThirdPartyAwaiting, ThirdParty: kind})
}

// PayLater submits the order unpaid; the customer settles at the counter.
func (o *Orchestrator) PayLater(ctx context.Context) error {
	if !o.register.EnablePayLater {
		return ErrPaymentTypeDisabled
	}

	o.submitOrder(ctx, domain.OrderStatusNew, false, "", PaymentState{Kind: StatePayLater, FullyPaid: false})
	return nil
}

// ParkOrder stores the order for later without payment.
func (o *Orchestrator) ParkOrder(ctx context.Context) {
	o.submitOrder(ctx, domain.OrderStatusParked, false, "", PaymentState{Kind: StatePark})
}

// submitOrder creates the order, kicks off receipt printing and starts the
// redirect countdown. A submission failure is a distinct terminal state with
// restart-only recovery because payment may already have been captured.
func (o *Orchestrator) submitOrder(ctx context.Context, status domain.OrderStatus, paid bool, eftposReceipt string, success PaymentState) {
	input := orders.CreateOrderInput{
		Register:       o.register,
		Restaurant:     o.cart.Restaurant(),
		UserID:         o.userID,
		OrderType:      o.cart.OrderType(),
		Status:         status,
		Paid:           paid,
		Table:          o.cart.TableNumber(),
		Notes:          o.cart.Notes(),
		BuzzerNumber:   o.cart.BuzzerNumber(),
		EftposReceipt:  eftposReceipt,
		Products:       o.cart.Products(),
		Total:          o.cart.Total(),
		SubTotal:       o.cart.SubTotal(),
		Promotion:      o.cart.Promotion(),
		PaymentAmounts: o.cart.PaymentAmounts(),
	}

	order, err := o.creator.CreateOrder(ctx, input)
	if err != nil {
		o.setState(PaymentState{Kind: StateCreateOrderFailed, Message: err.Error()})
		return
	}

	if o.printer != nil {
		// Fire and forget; print failures queue for retry on their own.
		go o.printer.Dispatch(context.WithoutCancel(ctx), order, o.register)
	}

	success.OrderNumber = order.Number
	success.CountdownRemaining = redirectSeconds
	o.setState(success)

	o.startRedirectCountdown()
}

func (o *Orchestrator) startRedirectCountdown() {
	o.mu.Lock()
	if o.countdown != nil {
		o.countdown.Stop()
	}
	o.finishOnce = &sync.Once{}
	once := o.finishOnce
	o.countdown = startCountdown(redirectSeconds, o.tick,
		func(remaining int) {
			o.mu.Lock()
			o.state.CountdownRemaining = remaining
			o.mu.Unlock()
		},
		func() {
			once.Do(o.finish)
		})
	o.mu.Unlock()
}

// ContinueToNextOrder short-circuits the countdown and performs the same
// clear and redirect immediately.
func (o *Orchestrator) ContinueToNextOrder() {
	o.mu.Lock()
	cd := o.countdown
	once := o.finishOnce
	o.mu.Unlock()

	if cd != nil {
		cd.Stop()
	}
	once.Do(o.finish)
}

// ContinueToNextPayment returns to Idle with the cart and its recorded
// payments intact, ready for the next split payment.
func (o *Orchestrator) ContinueToNextPayment() {
	o.setState(PaymentState{Kind: StateIdle})
}

// CancelPayment abandons the payment surface without touching the cart.
func (o *Orchestrator) CancelPayment() {
	o.setState(PaymentState{Kind: StateIdle})
}

// CancelOrder abandons the whole order: cart cleared, back to the entry
// screen. Available from any state.
func (o *Orchestrator) CancelOrder() {
	o.mu.Lock()
	cd := o.countdown
	o.mu.Unlock()
	if cd != nil {
		cd.Stop()
	}

	o.cart.ClearCart()
	o.setState(PaymentState{Kind: StateIdle})
	if o.onRedirect != nil {
		o.onRedirect()
	}
}

// Restart recovers from a failed order submission. It behaves like
// CancelOrder because a payment may already have been captured; retrying the
// submission silently is never safe.
func (o *Orchestrator) Restart() {
	o.CancelOrder()
}

func (o *Orchestrator) finish() {
	o.cart.ClearCart()
	o.setState(PaymentState{Kind: StateIdle})
	if o.onRedirect != nil {
		o.onRedirect()
	}
}

func validateAmount(amountCents, remaining int) error {
	if remaining <= 0 {
		return ErrNothingToPay
	}
	if amountCents <= 0 {
		return ErrInvalidAmount
	}
	if amountCents > remaining {
		return ErrAmountExceedsRemaining
	}
	return nil
}
