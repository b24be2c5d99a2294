package cart

import "errors"

var (
	// ErrInvalidState is returned for index-based mutations against an empty
	// cart. The old client silently ignored these; failing loudly surfaces
	// what is always an upstream UI-state bug.
	ErrInvalidState = errors.New("cart is empty, index mutation is invalid")

	ErrIndexOutOfRange = errors.New("cart line index out of range")

	ErrPromotionNotFound         = errors.New("promotion code not found")
	ErrPromotionExpired          = errors.New("promotion has expired")
	ErrPromotionNotAvailable     = errors.New("promotion is not available right now")
	ErrPromotionConditionsNotMet = errors.New("promotion conditions not met")

	ErrPaymentNotFound = errors.New("payment entry not found")
)
