package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabin-ltd/kiosk/internal/domain"
	"github.com/tabin-ltd/kiosk/internal/errlog"
)

func newTestCreator(repo *mockRepository) *Creator {
	c := NewCreator(repo, errlog.Discard{})
	c.now = func() time.Time {
		return time.Date(2026, time.August, 31, 12, 30, 0, 0, time.UTC)
	}
	c.newID = func() string { return "order-fixed-id" }
	return c
}

func validInput() CreateOrderInput {
	return CreateOrderInput{
		Register:   &domain.Register{ID: "reg-1", OrderNumberSuffix: "K"},
		Restaurant: &domain.Restaurant{ID: "rest-1"},
		UserID:     "user-1",
		OrderType:  domain.OrderTypeTakeaway,
		Paid:       true,
		Products: []domain.CartProduct{{
			ID:       "burger",
			Name:     "Burger",
			Price:    1000,
			Quantity: 2,
			Category: domain.CartCategory{ID: "cat-1", Name: "Burgers"},
		}},
		Total:    2000,
		SubTotal: 2000,
	}
}

func TestCreateOrder_Preconditions(t *testing.T) {
	repo := &mockRepository{}
	c := newTestCreator(repo)
	ctx := context.Background()

	input := validInput()
	input.UserID = ""
	_, err := c.CreateOrder(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidUser)

	input = validInput()
	input.OrderType = ""
	_, err = c.CreateOrder(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidOrderType)

	input = validInput()
	input.Restaurant = nil
	_, err = c.CreateOrder(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidRestaurant)

	input = validInput()
	input.Products = nil
	_, err = c.CreateOrder(ctx, input)
	assert.ErrorIs(t, err, ErrNoProducts)

	assert.Empty(t, repo.inserted, "nothing persists when validation fails")
}

func TestCreateOrder_BuildsAndPersists(t *testing.T) {
	repo := &mockRepository{}
	c := newTestCreator(repo)

	input := validInput()
	input.Table = "7"
	input.Promotion = &domain.AppliedPromotion{
		Promotion:        &domain.Promotion{ID: "promo-1"},
		DiscountedAmount: 300,
	}

	order, err := c.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "order-fixed-id", order.ID)
	assert.Equal(t, domain.OrderStatusNew, order.Status)
	assert.Equal(t, "1K", order.Number, "daily counter plus register suffix")
	assert.Equal(t, "7", order.Table)
	assert.Equal(t, 300, order.Discount)
	assert.Equal(t, "promo-1", order.PromotionID)
	assert.Equal(t, "2026-08-31T12:30:00.000", order.PlacedAt)
	assert.Equal(t, "rest-1", order.RestaurantID)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, []string{"2026-08-31"}, repo.counterDays)
}

func TestCreateOrder_AutoComplete(t *testing.T) {
	repo := &mockRepository{}
	c := newTestCreator(repo)

	input := validInput()
	input.Paid = false
	input.Restaurant.AutoCompleteOrders = true

	order, err := c.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCompleted, order.Status)
	assert.True(t, order.Paid, "auto-complete implies paid")
	assert.NotEmpty(t, order.CompletedAt)
	assert.NotEmpty(t, order.CompletedAtUTC)
}

func TestCreateOrder_ParkedStaysParked(t *testing.T) {
	repo := &mockRepository{}
	c := newTestCreator(repo)

	input := validInput()
	input.Status = domain.OrderStatusParked
	input.Restaurant.AutoCompleteOrders = true

	order, err := c.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusParked, order.Status)
	assert.Empty(t, order.CompletedAt)
}

func TestCreateOrder_EmptyModifierGroupsOmitted(t *testing.T) {
	repo := &mockRepository{}
	c := newTestCreator(repo)

	input := validInput()
	input.Products[0].ModifierGroups = []domain.CartModifierGroup{
		{ID: "mg-empty", Name: "Sauces"},
		{ID: "mg-zero", Name: "Extras", Modifiers: []domain.CartModifier{{ID: "m1", Quantity: 0}}},
		{ID: "mg-kept", Name: "Toppings", Modifiers: []domain.CartModifier{{ID: "m2", Name: "Cheese", Price: 100, Quantity: 1}}},
	}

	order, err := c.CreateOrder(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, order.Products, 1)
	require.Len(t, order.Products[0].ModifierGroups, 1)
	assert.Equal(t, "mg-kept", order.Products[0].ModifierGroups[0].ID)
}

func TestCreateOrder_PersistFailureReported(t *testing.T) {
	repo := &mockRepository{insertErr: errors.New("db down")}
	c := newTestCreator(repo)

	_, err := c.CreateOrder(context.Background(), validInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save order")
}
