package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/tabin-ltd/kiosk/internal/domain"
	"golang.org/x/sync/singleflight"
)

// Service caches the restaurant document in memory and answers the sold-out
// and remaining-stock questions the menu needs. Concurrent cache misses for
// the same restaurant collapse into one repository call.
type Service struct {
	repo  Repository
	group singleflight.Group
	now   func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	v, err, _ := s.group.Do(restaurantID, func() (interface{}, error) {
		return s.repo.GetRestaurant(ctx, restaurantID)
	})
	if err != nil {
		return nil, fmt.Errorf("load restaurant %s: %w", restaurantID, err)
	}
	return v.(*domain.Restaurant), nil
}

// RegisterByKey resolves the register configuration tied to a device key.
func (s *Service) RegisterByKey(ctx context.Context, key string) (*domain.Register, error) {
	return s.repo.GetRegisterByKey(ctx, key)
}

// IsProductSoldOut reports whether a product cannot be ordered right now,
// either via the permanent flag or a per-day sold-out marker set today.
func (s *Service) IsProductSoldOut(p *domain.Product) bool {
	return soldOut(p.SoldOut, p.SoldOutDate, s.now())
}

func (s *Service) IsModifierSoldOut(m *domain.Modifier) bool {
	return soldOut(m.SoldOut, m.SoldOutDate, s.now())
}

func soldOut(flag bool, soldOutDate string, now time.Time) bool {
	if flag {
		return true
	}
	// A sold-out date only counts for the day it was set; stock resets
	// overnight.
	return soldOutDate != "" && soldOutDate == now.Format("2006-01-02")
}

// QuantityAvailable is how many more units of a product the cart may take,
// given what the cart already holds. Unlimited stock reports -1.
func (s *Service) QuantityAvailable(p *domain.Product, cartQuantities *domain.ItemQuantities) int {
	if p.TotalQuantityAvailable == 0 {
		return -1
	}

	inCart := 0
	if q, ok := cartQuantities.Get(p.ID); ok {
		inCart = q.Quantity
	}

	remaining := p.TotalQuantityAvailable - inCart
	if remaining < 0 {
		return 0
	}
	return remaining
}
