package checkout

import "errors"

var (
	ErrInvalidAmount          = errors.New("payment amount must be greater than zero")
	ErrAmountExceedsRemaining = errors.New("payment amount exceeds remaining balance")
	ErrNothingToPay           = errors.New("no balance remaining")
	ErrPaymentTypeDisabled    = errors.New("payment type not enabled on this register")
)
