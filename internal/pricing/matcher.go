package pricing

import (
	"sort"

	"github.com/tabin-ltd/kiosk/internal/domain"
)

// MatchPromotionProducts decides whether the cart satisfies every item group
// of a promotion and, if so, which cart quantities count toward it.
//
// Groups are AND-ed: with multiple groups the customer must satisfy all of
// them. For example group one "category: Vege Pizza, min 2" plus group two
// "category: Sides, min 1" requires at least two vege pizzas and a side.
//
// A group's counted quantity is the sum of cart quantities for every listed
// category plus every listed product. When the group holds, candidates (the
// products in listed categories, plus explicitly listed products) are sorted
// by unit price (cheapest first when applyToCheapest, dearest first
// otherwise, ties keeping aggregate order) and consumed greedily until
// MinQuantity units are covered; the last candidate may be taken partially.
//
// Matches from every group merge into one id-keyed result; a later group
// overwrites an earlier group's entry for the same product id. Returns nil if
// any group's condition fails.
func MatchPromotionProducts(
	categories *domain.ItemQuantities,
	products *domain.ItemQuantities,
	groups []domain.PromotionItemGroup,
	applyToCheapest bool,
) *domain.ItemQuantities {
	matching := domain.NewItemQuantities()
	condition := true

	for _, group := range groups {
		// A failed group fails the whole promotion; remaining groups are
		// skipped but the loop itself keeps going.
		if !condition {
			continue
		}

		var candidates []domain.ItemQuantity
		counted := 0

		for _, categoryID := range group.CategoryIDs {
			category, ok := categories.Get(categoryID)
			if !ok {
				continue
			}

			counted += category.Quantity

			for _, p := range products.Values() {
				if p.CategoryID == category.ID {
					candidates = append(candidates, p)
				}
			}
		}

		for _, productID := range group.ProductIDs {
			p, ok := products.Get(productID)
			if !ok {
				continue
			}

			counted += p.Quantity
			candidates = append(candidates, p)
		}

		if counted < group.MinQuantity {
			condition = false
			continue
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			if applyToCheapest {
				return candidates[i].Price < candidates[j].Price
			}
			return candidates[i].Price > candidates[j].Price
		})

		remaining := group.MinQuantity

		for _, p := range candidates {
			if remaining == 0 {
				break
			}

			if remaining > p.Quantity {
				matching.Set(p)
				remaining -= p.Quantity
			} else {
				p.Quantity = remaining
				matching.Set(p)
				remaining = 0
			}
		}
	}

	if !condition {
		return nil
	}

	return matching
}
