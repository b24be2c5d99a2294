package pricing

import "github.com/tabin-ltd/kiosk/internal/domain"

// DiscountResult is the outcome of evaluating a promotion's discount rules:
// the best discount found and the product quantities it applies to.
type DiscountResult struct {
	MatchingProducts *domain.ItemQuantities
	DiscountedAmount int
}

// MaxDiscountedAmount computes the monetary discount for a promotion.
//
// The discountable base is explicitTotal when non-zero (entire-order
// promotions discount against the whole order), otherwise the summed
// price*quantity of matched. A rule carrying its own item groups
// (related-items promotions) re-runs the matcher against those groups and
// recomputes the base from that result; if the nested match fails the rule
// contributes nothing. Per rule: FIXED is the flat amount, PERCENTAGE is
// base*amount/100, SETPRICE is base-amount. The maximum candidate across all
// rules wins; rules are alternatives, never summed. A non-positive result
// means no discount; callers must reject it before applying the promotion.
func MaxDiscountedAmount(
	categories *domain.ItemQuantities,
	products *domain.ItemQuantities,
	discounts []domain.PromotionDiscount,
	matched *domain.ItemQuantities,
	explicitTotal int,
	applyToCheapest bool,
) DiscountResult {
	base := 0

	if explicitTotal != 0 {
		base = explicitTotal
	} else {
		if matched == nil {
			return DiscountResult{MatchingProducts: domain.NewItemQuantities()}
		}
		for _, p := range matched.Values() {
			base += p.Price * p.Quantity
		}
	}

	maxAmount := 0
	bestProducts := matched

	for _, rule := range discounts {
		ruleProducts := matched

		if len(rule.Items) > 0 {
			// The rule targets its own product set, not the trigger set. The
			// recomputed base intentionally carries over to any later rules,
			// matching long-standing behaviour.
			base = 0

			nested := MatchPromotionProducts(categories, products, rule.Items, false)
			if nested == nil {
				continue
			}

			for _, p := range nested.Values() {
				base += p.Price * p.Quantity
			}
			ruleProducts = nested
		}

		var amount int
		switch rule.Type {
		case domain.DiscountTypeFixed:
			amount = rule.Amount
		case domain.DiscountTypePercentage:
			amount = base * rule.Amount / 100
		case domain.DiscountTypeSetPrice:
			amount = base - rule.Amount
		}

		if amount > maxAmount {
			maxAmount = amount
			bestProducts = ruleProducts
		}
	}

	if bestProducts == nil {
		bestProducts = domain.NewItemQuantities()
	}

	return DiscountResult{MatchingProducts: bestProducts, DiscountedAmount: maxAmount}
}
