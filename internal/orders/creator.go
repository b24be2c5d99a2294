package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tabin-ltd/kiosk/internal/domain"
	"github.com/tabin-ltd/kiosk/internal/errlog"
)

var (
	ErrInvalidUser       = errors.New("invalid user")
	ErrInvalidOrderType  = errors.New("invalid order type")
	ErrInvalidRestaurant = errors.New("invalid restaurant")
	ErrNoProducts        = errors.New("no products have been selected")
)

// CreateOrderInput is everything the checkout flow knows at submission time.
type CreateOrderInput struct {
	Register       *domain.Register
	Restaurant     *domain.Restaurant
	UserID         string
	OrderType      domain.OrderType
	Status         domain.OrderStatus
	Paid           bool
	Table          string
	Notes          string
	BuzzerNumber   string
	EftposReceipt  string
	Products       []domain.CartProduct
	Total          int
	SubTotal       int
	Promotion      *domain.AppliedPromotion
	PaymentAmounts domain.PaymentAmounts
}

// Creator assembles and persists orders.
type Creator struct {
	repo   Repository
	errors errlog.Logger
	now    func() time.Time
	newID  func() string
}

func NewCreator(repo Repository, errors errlog.Logger) *Creator {
	return &Creator{
		repo:   repo,
		errors: errors,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// CreateOrder validates, builds and persists one order. Validation failures
// are reported before being returned; they always indicate a UI-state bug
// upstream, not user error.
func (c *Creator) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if input.UserID == "" {
		c.errors.Report("Invalid user", nil)
		return nil, ErrInvalidUser
	}
	if input.OrderType == "" {
		c.errors.Report("Invalid order type", map[string]interface{}{"orderType": input.OrderType})
		return nil, ErrInvalidOrderType
	}
	if input.Restaurant == nil {
		c.errors.Report("Invalid restaurant", nil)
		return nil, ErrInvalidRestaurant
	}
	if len(input.Products) == 0 {
		c.errors.Report("No products have been selected", nil)
		return nil, ErrNoProducts
	}

	now := c.now()

	number, err := c.nextNumber(ctx, input.Register, now)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:             c.newID(),
		Status:         domain.OrderStatusNew,
		Paid:           input.Paid,
		Type:           input.OrderType,
		Number:         number,
		Table:          input.Table,
		Notes:          input.Notes,
		BuzzerNumber:   input.BuzzerNumber,
		EftposReceipt:  input.EftposReceipt,
		Total:          input.Total,
		SubTotal:       input.SubTotal,
		PaymentAmounts: input.PaymentAmounts,
		Products:       orderProducts(input.Products),
		PlacedAt:       domain.LocalISO(now),
		PlacedAtUTC:    now.UTC().Format(time.RFC3339Nano),
		RegisterID:     input.Register.ID,
		UserID:         input.UserID,
		RestaurantID:   input.Restaurant.ID,
	}

	if input.Promotion != nil {
		order.Discount = input.Promotion.DiscountedAmount
		order.PromotionID = input.Promotion.Promotion.ID
	}

	if input.Status != "" {
		order.Status = input.Status
	}

	// Auto-complete restaurants skip the NEW stage entirely; parked orders
	// stay parked regardless.
	if input.Restaurant.AutoCompleteOrders && order.Status == domain.OrderStatusNew {
		order.Status = domain.OrderStatusCompleted
		order.Paid = true
		order.CompletedAt = domain.LocalISO(now)
		order.CompletedAtUTC = now.UTC().Format(time.RFC3339Nano)
	}

	if err := c.repo.InsertOrder(ctx, order); err != nil {
		c.errors.Report("Error saving order", map[string]interface{}{"orderId": order.ID, "error": err.Error()})
		return nil, fmt.Errorf("save order: %w", err)
	}

	return order, nil
}

func (c *Creator) nextNumber(ctx context.Context, register *domain.Register, now time.Time) (string, error) {
	counter, err := c.repo.NextOrderNumber(ctx, now.Format("2006-01-02"))
	if err != nil {
		return "", fmt.Errorf("order number: %w", err)
	}

	number := strconv.Itoa(counter)
	if register != nil && register.OrderNumberSuffix != "" {
		number += register.OrderNumberSuffix
	}
	return number, nil
}

// orderProducts flattens cart lines into the submission shape. Modifier
// groups with nothing selected are dropped rather than sent empty.
func orderProducts(products []domain.CartProduct) []domain.OrderProduct {
	out := make([]domain.OrderProduct, 0, len(products))

	for _, p := range products {
		op := domain.OrderProduct{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Quantity: p.Quantity,
			Notes:    p.Notes,
			Category: p.Category,
		}

		for _, mg := range p.ModifierGroups {
			var modifiers []domain.OrderModifier
			for _, m := range mg.Modifiers {
				if m.Quantity <= 0 {
					continue
				}
				modifiers = append(modifiers, domain.OrderModifier{
					ID:       m.ID,
					Name:     m.Name,
					Price:    m.Price,
					Quantity: m.Quantity,
				})
			}
			if len(modifiers) == 0 {
				continue
			}
			op.ModifierGroups = append(op.ModifierGroups, domain.OrderModifierGroup{
				ID:        mg.ID,
				Name:      mg.Name,
				Modifiers: modifiers,
			})
		}

		out = append(out, op)
	}
	return out
}
