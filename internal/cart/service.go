package cart

import (
	"strings"
	"sync"
	"time"

	"github.com/tabin-ltd/kiosk/internal/availability"
	"github.com/tabin-ltd/kiosk/internal/domain"
	"github.com/tabin-ltd/kiosk/internal/pricing"
)

// Service owns the session cart: the authoritative line-item list, the
// id-keyed quantity aggregates derived from it, the running totals and the
// single best applicable promotion. One Service exists per register session.
//
// Every mutation recomputes the total, rebuilds all three aggregates from
// scratch (never patched incrementally, which guards against drift) and
// re-evaluates the promotion before returning.
type Service struct {
	mu       sync.Mutex
	platform domain.RegisterType
	now      func() time.Time

	restaurant *domain.Restaurant

	orderType    domain.OrderType
	tableNumber  string
	buzzerNumber string
	notes        string
	products     []domain.CartProduct

	categoryQuantities *domain.ItemQuantities
	productQuantities  *domain.ItemQuantities
	modifierQuantities *domain.ItemQuantities

	promotion   *domain.AppliedPromotion
	userApplied *domain.Promotion

	total    int
	subTotal int

	payments       []domain.Payment
	paymentAmounts domain.PaymentAmounts
}

func NewService(restaurant *domain.Restaurant, platform domain.RegisterType) *Service {
	return &Service{
		platform:           platform,
		now:                time.Now,
		restaurant:         restaurant,
		categoryQuantities: domain.NewItemQuantities(),
		productQuantities:  domain.NewItemQuantities(),
		modifierQuantities: domain.NewItemQuantities(),
	}
}

func (s *Service) AddItem(product domain.CartProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]domain.CartProduct, len(s.products), len(s.products)+1)
	copy(products, s.products)
	s.products = append(products, product)

	s.recompute()
}

func (s *Service) UpdateItem(index int, product domain.CartProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}

	products := make([]domain.CartProduct, len(s.products))
	copy(products, s.products)
	products[index] = product
	s.products = products

	s.recompute()
	return nil
}

func (s *Service) UpdateItemQuantity(index, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}

	products := make([]domain.CartProduct, len(s.products))
	copy(products, s.products)
	products[index].Quantity = quantity
	s.products = products

	s.recompute()
	return nil
}

func (s *Service) DeleteItem(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(index); err != nil {
		return err
	}

	products := make([]domain.CartProduct, 0, len(s.products)-1)
	products = append(products, s.products[:index]...)
	products = append(products, s.products[index+1:]...)
	s.products = products

	s.recompute()
	return nil
}

// ClearCart resets every session field back to its initial empty value. Used
// after order completion, cancellation, or navigating back to the entry
// screen. The restaurant binding survives; everything else does not.
func (s *Service) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orderType = ""
	s.tableNumber = ""
	s.buzzerNumber = ""
	s.notes = ""
	s.products = nil
	s.categoryQuantities = domain.NewItemQuantities()
	s.productQuantities = domain.NewItemQuantities()
	s.modifierQuantities = domain.NewItemQuantities()
	s.promotion = nil
	s.userApplied = nil
	s.total = 0
	s.subTotal = 0
	s.payments = nil
	s.paymentAmounts = domain.PaymentAmounts{}
}

func (s *Service) checkIndex(index int) error {
	if len(s.products) == 0 {
		return ErrInvalidState
	}
	if index < 0 || index >= len(s.products) {
		return ErrIndexOutOfRange
	}
	return nil
}

// recompute runs with the lock held after every mutation: totals first,
// aggregates second, promotion selection last.
func (s *Service) recompute() {
	total := 0
	for _, p := range s.products {
		total += p.ExtendedPrice()
	}
	s.total = total

	s.rebuildQuantities()
	s.reevaluatePromotion()
	s.refreshSubTotal()
}

func (s *Service) rebuildQuantities() {
	categories := domain.NewItemQuantities()
	products := domain.NewItemQuantities()
	modifiers := domain.NewItemQuantities()

	for _, product := range s.products {
		// Categories have no quantity of their own; the owning product's
		// quantity stands in for it.
		categories.Accumulate(domain.ItemQuantity{
			ID:       product.Category.ID,
			Name:     product.Category.Name,
			Quantity: product.Quantity,
			Price:    product.Price,
		})

		// The same product can sit on several cart lines.
		products.Accumulate(domain.ItemQuantity{
			ID:         product.ID,
			Name:       product.Name,
			Quantity:   product.Quantity,
			Price:      product.Price,
			CategoryID: product.Category.ID,
		})

		for _, mg := range product.ModifierGroups {
			for _, m := range mg.Modifiers {
				modifiers.Accumulate(domain.ItemQuantity{
					ID:       m.ID,
					Name:     m.Name,
					Price:    m.Price,
					Quantity: product.Quantity * m.Quantity,
				})
			}
		}
	}

	s.categoryQuantities = categories
	s.productQuantities = products
	s.modifierQuantities = modifiers
}

func (s *Service) refreshSubTotal() {
	if s.promotion != nil {
		s.subTotal = s.total - s.promotion.DiscountedAmount
	} else {
		s.subTotal = s.total
	}
}

// reevaluatePromotion picks the single best applicable promotion, or none.
// Re-running it with an unchanged cart yields an identical result.
func (s *Service) reevaluatePromotion() {
	s.promotion = nil

	if s.restaurant == nil || len(s.products) == 0 {
		return
	}

	var best *domain.AppliedPromotion

	for i := range s.restaurant.Promotions {
		promotion := &s.restaurant.Promotions[i]

		userApplied := s.userApplied != nil && s.userApplied.ID == promotion.ID
		if !promotion.AutoApply && !userApplied {
			continue
		}
		if !s.eligible(promotion) {
			continue
		}
		if s.orderType == "" || !promotion.SupportsOrderType(s.orderType) {
			continue
		}
		if s.total < promotion.MinSpend {
			continue
		}

		result := s.promotionDiscount(promotion)
		if result.DiscountedAmount <= 0 {
			continue
		}

		// Strictly greater only: the first promotion seen wins exact ties.
		if best == nil || result.DiscountedAmount > best.DiscountedAmount {
			best = &domain.AppliedPromotion{
				Promotion:        promotion,
				DiscountedAmount: result.DiscountedAmount,
				MatchingProducts: result.MatchingProducts,
			}
		}
	}

	s.promotion = best
}

// eligible applies the cart-independent filters: platform, validity window
// and weekly availability.
func (s *Service) eligible(promotion *domain.Promotion) bool {
	if !promotion.SupportsPlatform(s.platform) {
		return false
	}

	now := s.now()
	if now.Before(promotion.StartDate) || now.After(promotion.EndDate) {
		return false
	}

	return availability.IsOpen(promotion.Availability, now)
}

func (s *Service) promotionDiscount(promotion *domain.Promotion) pricing.DiscountResult {
	switch promotion.Type {
	case domain.PromotionTypeEntireOrder:
		result := pricing.MaxDiscountedAmount(
			s.categoryQuantities, s.productQuantities, promotion.Discounts, nil, s.total, false)
		// The discount is against the whole order; no specific lines attach.
		result.MatchingProducts = domain.NewItemQuantities()
		return result

	case domain.PromotionTypeCombo, domain.PromotionTypeRelatedItems:
		matched := pricing.MatchPromotionProducts(
			s.categoryQuantities, s.productQuantities, promotion.Items, promotion.ApplyToCheapest)
		if matched == nil {
			return pricing.DiscountResult{MatchingProducts: domain.NewItemQuantities()}
		}
		return pricing.MaxDiscountedAmount(
			s.categoryQuantities, s.productQuantities, promotion.Discounts, matched, 0, promotion.ApplyToCheapest)
	}

	return pricing.DiscountResult{MatchingProducts: domain.NewItemQuantities()}
}

// ApplyPromotionCode applies a customer-entered code. The promotion does not
// need autoApply, but every other eligibility rule still holds, and it
// competes against auto-applied candidates in the usual best-discount
// selection.
func (s *Service) ApplyPromotionCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restaurant == nil {
		return ErrPromotionNotFound
	}

	var promotion *domain.Promotion
	for i := range s.restaurant.Promotions {
		if strings.EqualFold(s.restaurant.Promotions[i].Code, code) && s.restaurant.Promotions[i].Code != "" {
			promotion = &s.restaurant.Promotions[i]
			break
		}
	}
	if promotion == nil {
		return ErrPromotionNotFound
	}

	now := s.now()
	if now.Before(promotion.StartDate) || now.After(promotion.EndDate) {
		return ErrPromotionExpired
	}
	if !promotion.SupportsPlatform(s.platform) || !availability.IsOpen(promotion.Availability, now) {
		return ErrPromotionNotAvailable
	}
	if s.orderType != "" && !promotion.SupportsOrderType(s.orderType) {
		return ErrPromotionConditionsNotMet
	}
	if s.total < promotion.MinSpend {
		return ErrPromotionConditionsNotMet
	}
	if result := s.promotionDiscount(promotion); result.DiscountedAmount <= 0 {
		return ErrPromotionConditionsNotMet
	}

	s.userApplied = promotion
	s.reevaluatePromotion()
	s.refreshSubTotal()
	return nil
}

func (s *Service) RemoveUserAppliedPromotion() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userApplied = nil
	s.reevaluatePromotion()
	s.refreshSubTotal()
}

func (s *Service) UserAppliedPromotionCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userApplied == nil {
		return ""
	}
	return s.userApplied.Code
}

func (s *Service) SetOrderType(orderType domain.OrderType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orderType = orderType
	s.reevaluatePromotion()
	s.refreshSubTotal()
}

func (s *Service) OrderType() domain.OrderType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderType
}

func (s *Service) SetTableNumber(tableNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tableNumber = tableNumber
}

func (s *Service) TableNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableNumber
}

func (s *Service) SetBuzzerNumber(buzzerNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buzzerNumber = buzzerNumber
}

func (s *Service) BuzzerNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buzzerNumber
}

func (s *Service) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
}

func (s *Service) Notes() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notes
}

func (s *Service) Products() []domain.CartProduct {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]domain.CartProduct, len(s.products))
	copy(products, s.products)
	return products
}

func (s *Service) ProductQuantities() *domain.ItemQuantities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productQuantities
}

func (s *Service) ModifierQuantities() *domain.ItemQuantities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modifierQuantities
}

func (s *Service) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *Service) SubTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subTotal
}

func (s *Service) Promotion() *domain.AppliedPromotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promotion
}

func (s *Service) Restaurant() *domain.Restaurant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restaurant
}

// RecordPayment appends one successful payment entry against the current
// order and updates the per-type totals.
func (s *Service) RecordPayment(payment domain.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = append(s.payments, payment)
	s.applyPaymentAmount(payment, 1)
}

// RemovePayment deletes a previously recorded manual entry (cash or
// third-party amounts entered by an operator).
func (s *Service) RemovePayment(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.payments) {
		return ErrPaymentNotFound
	}

	payment := s.payments[index]
	s.payments = append(s.payments[:index:index], s.payments[index+1:]...)
	s.applyPaymentAmount(payment, -1)
	return nil
}

func (s *Service) applyPaymentAmount(payment domain.Payment, sign int) {
	switch payment.Type {
	case domain.PaymentTypeCash:
		s.paymentAmounts.Cash += sign * payment.Amount
	case domain.PaymentTypeEftpos:
		s.paymentAmounts.Eftpos += sign * payment.Amount
	case domain.PaymentTypeUberEats:
		s.paymentAmounts.UberEats += sign * payment.Amount
	case domain.PaymentTypeMenulog:
		s.paymentAmounts.Menulog += sign * payment.Amount
	}
}

func (s *Service) Payments() []domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()

	payments := make([]domain.Payment, len(s.payments))
	copy(payments, s.payments)
	return payments
}

func (s *Service) PaymentAmounts() domain.PaymentAmounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentAmounts
}

func (s *Service) PaidSoFar() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentAmounts.Total()
}

// AmountRemaining is the balance still owed on the current order.
func (s *Service) AmountRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subTotal - s.paymentAmounts.Total()
}
