package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

func quantities(items ...domain.ItemQuantity) *domain.ItemQuantities {
	q := domain.NewItemQuantities()
	for _, item := range items {
		q.Accumulate(item)
	}
	return q
}

func TestMatch_PartialConsumption(t *testing.T) {
	categories := quantities(domain.ItemQuantity{ID: "cat-pizza", Name: "Pizza", Quantity: 3, Price: 500})
	products := quantities(domain.ItemQuantity{ID: "prod-a", Name: "Margherita", Quantity: 3, Price: 500, CategoryID: "cat-pizza"})

	groups := []domain.PromotionItemGroup{{MinQuantity: 2, CategoryIDs: []string{"cat-pizza"}}}

	matched := MatchPromotionProducts(categories, products, groups, false)
	require.NotNil(t, matched)

	got, ok := matched.Get("prod-a")
	require.True(t, ok)
	assert.Equal(t, 2, got.Quantity, "only min quantity units should be consumed")
}

func TestMatch_GroupFails(t *testing.T) {
	categories := quantities(domain.ItemQuantity{ID: "cat-pizza", Quantity: 1, Price: 500})
	products := quantities(domain.ItemQuantity{ID: "prod-a", Quantity: 1, Price: 500, CategoryID: "cat-pizza"})

	groups := []domain.PromotionItemGroup{{MinQuantity: 2, CategoryIDs: []string{"cat-pizza"}}}

	assert.Nil(t, MatchPromotionProducts(categories, products, groups, false))
}

func TestMatch_GroupsAreAnded(t *testing.T) {
	categories := quantities(
		domain.ItemQuantity{ID: "cat-pizza", Quantity: 2, Price: 1200},
		domain.ItemQuantity{ID: "cat-sides", Quantity: 0, Price: 400},
	)
	products := quantities(
		domain.ItemQuantity{ID: "prod-pizza", Quantity: 2, Price: 1200, CategoryID: "cat-pizza"},
	)

	groups := []domain.PromotionItemGroup{
		{MinQuantity: 2, CategoryIDs: []string{"cat-pizza"}},
		{MinQuantity: 1, CategoryIDs: []string{"cat-sides"}},
	}

	assert.Nil(t, MatchPromotionProducts(categories, products, groups, false), "second group unmet should fail the whole match")
}

func TestMatch_ApplyToCheapestOrdering(t *testing.T) {
	categories := quantities(domain.ItemQuantity{ID: "cat", Quantity: 4, Price: 300})
	products := quantities(
		domain.ItemQuantity{ID: "dear", Quantity: 2, Price: 900, CategoryID: "cat"},
		domain.ItemQuantity{ID: "cheap", Quantity: 2, Price: 300, CategoryID: "cat"},
	)

	groups := []domain.PromotionItemGroup{{MinQuantity: 2, CategoryIDs: []string{"cat"}}}

	matched := MatchPromotionProducts(categories, products, groups, true)
	require.NotNil(t, matched)

	cheap, ok := matched.Get("cheap")
	require.True(t, ok)
	assert.Equal(t, 2, cheap.Quantity)
	_, ok = matched.Get("dear")
	assert.False(t, ok, "cheapest-first should not touch the dearer product")

	matched = MatchPromotionProducts(categories, products, groups, false)
	require.NotNil(t, matched)

	dear, ok := matched.Get("dear")
	require.True(t, ok)
	assert.Equal(t, 2, dear.Quantity)
	_, ok = matched.Get("cheap")
	assert.False(t, ok, "dearest-first should not touch the cheaper product")
}

func TestMatch_PriceTieKeepsAggregateOrder(t *testing.T) {
	categories := quantities(domain.ItemQuantity{ID: "cat", Quantity: 4, Price: 500})
	products := quantities(
		domain.ItemQuantity{ID: "first", Quantity: 2, Price: 500, CategoryID: "cat"},
		domain.ItemQuantity{ID: "second", Quantity: 2, Price: 500, CategoryID: "cat"},
	)

	groups := []domain.PromotionItemGroup{{MinQuantity: 1, CategoryIDs: []string{"cat"}}}

	matched := MatchPromotionProducts(categories, products, groups, true)
	require.NotNil(t, matched)

	got, ok := matched.Get("first")
	require.True(t, ok, "tie should be broken by aggregate insertion order")
	assert.Equal(t, 1, got.Quantity)
}

func TestMatch_ExplicitProductListing(t *testing.T) {
	categories := domain.NewItemQuantities()
	products := quantities(domain.ItemQuantity{ID: "prod-b", Quantity: 3, Price: 250})

	groups := []domain.PromotionItemGroup{{MinQuantity: 3, ProductIDs: []string{"prod-b"}}}

	matched := MatchPromotionProducts(categories, products, groups, false)
	require.NotNil(t, matched)

	got, ok := matched.Get("prod-b")
	require.True(t, ok)
	assert.Equal(t, 3, got.Quantity)
}

func TestMatch_LaterGroupOverwritesById(t *testing.T) {
	categories := quantities(domain.ItemQuantity{ID: "cat", Quantity: 3, Price: 500})
	products := quantities(domain.ItemQuantity{ID: "prod-a", Quantity: 3, Price: 500, CategoryID: "cat"})

	groups := []domain.PromotionItemGroup{
		{MinQuantity: 1, CategoryIDs: []string{"cat"}},
		{MinQuantity: 2, ProductIDs: []string{"prod-a"}},
	}

	matched := MatchPromotionProducts(categories, products, groups, false)
	require.NotNil(t, matched)

	got, ok := matched.Get("prod-a")
	require.True(t, ok)
	assert.Equal(t, 2, got.Quantity, "the later group's clamped entry replaces the earlier one")
}

func TestMatch_EmptyCart(t *testing.T) {
	groups := []domain.PromotionItemGroup{{MinQuantity: 1, CategoryIDs: []string{"cat"}}}

	assert.Nil(t, MatchPromotionProducts(domain.NewItemQuantities(), domain.NewItemQuantities(), groups, false))
}
