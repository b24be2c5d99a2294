package checkout

import (
	"github.com/tabin-ltd/kiosk/internal/domain"
	"github.com/tabin-ltd/kiosk/internal/eftpos"
)

// StateKind tags the payment surface's current state. Exactly one kind is
// active at a time; the associated fields on PaymentState only carry meaning
// for the kind that uses them.
type StateKind string

const (
	StateIdle               StateKind = "IDLE"
	StateAwaitingCard       StateKind = "AWAITING_CARD"
	StateEftposResult       StateKind = "EFTPOS_RESULT"
	StateCashResult         StateKind = "CASH_RESULT"
	StateThirdPartyResult   StateKind = "THIRD_PARTY_RESULT"
	StatePayLater           StateKind = "PAY_LATER"
	StatePark               StateKind = "PARK"
	StateThirdPartyAwaiting StateKind = "THIRD_PARTY_AWAITING"
	StateCreateOrderFailed  StateKind = "CREATE_ORDER_FAILED"
)

// PaymentState replaces the old pile of independently-nullable outcome flags
// with one tagged value, so an invalid combination is unrepresentable.
type PaymentState struct {
	Kind StateKind

	// AwaitingCard: transient terminal display and the one-shot delay flag.
	ProcessMessage string
	Delayed        bool

	// EftposResult.
	Outcome *eftpos.TransactionOutcome

	// CashResult: change owed to the customer.
	Change int

	// ThirdPartyResult.
	ThirdParty domain.PaymentType

	// CreateOrderFailed: the submission error. Recovery is restart only,
	// payment may already have been captured.
	Message string

	// Set once the order has been accepted.
	OrderNumber string
	// False while a balance remains and the surface should offer the next
	// payment instead of the order-complete flow.
	FullyPaid bool
	// Seconds left on the redirect countdown.
	CountdownRemaining int
}
