package domain

import (
	"time"

	"github.com/tabin-ltd/kiosk/internal/availability"
)

type PromotionType string

const (
	PromotionTypeEntireOrder  PromotionType = "ENTIREORDER"
	PromotionTypeCombo        PromotionType = "COMBO"
	PromotionTypeRelatedItems PromotionType = "RELATEDITEMS"
)

type DiscountType string

const (
	DiscountTypeFixed      DiscountType = "FIXED"
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeSetPrice   DiscountType = "SETPRICE"
)

// PromotionItemGroup is one AND-ed condition of a promotion: the cart must
// hold at least MinQuantity units across the listed categories and products.
type PromotionItemGroup struct {
	MinQuantity int      `json:"minQuantity" bson:"minQuantity"`
	CategoryIDs []string `json:"categoryIds" bson:"categoryIds"`
	ProductIDs  []string `json:"productIds" bson:"productIds"`
}

// PromotionDiscount is one alternative discount rule. Items is only set for
// related-items promotions, where the discount applies to a different product
// set than the one that triggered the promotion.
type PromotionDiscount struct {
	ID     string               `json:"id" bson:"id"`
	Type   DiscountType         `json:"type" bson:"type"`
	Amount int                  `json:"amount" bson:"amount"`
	Items  []PromotionItemGroup `json:"items,omitempty" bson:"items,omitempty"`
}

type Promotion struct {
	ID                  string               `json:"id" bson:"id"`
	Name                string               `json:"name" bson:"name"`
	Type                PromotionType        `json:"type" bson:"type"`
	Code                string               `json:"code" bson:"code"`
	AutoApply           bool                 `json:"autoApply" bson:"autoApply"`
	StartDate           time.Time            `json:"startDate" bson:"startDate"`
	EndDate             time.Time            `json:"endDate" bson:"endDate"`
	Availability        *availability.Weekly `json:"availability,omitempty" bson:"availability,omitempty"`
	AvailablePlatforms  []RegisterType       `json:"availablePlatforms" bson:"availablePlatforms"`
	AvailableOrderTypes []OrderType          `json:"availableOrderTypes" bson:"availableOrderTypes"`
	MinSpend            int                  `json:"minSpend" bson:"minSpend"`
	ApplyToCheapest     bool                 `json:"applyToCheapest" bson:"applyToCheapest"`
	Items               []PromotionItemGroup `json:"items" bson:"items"`
	Discounts           []PromotionDiscount  `json:"discounts" bson:"discounts"`
}

func (p *Promotion) SupportsPlatform(platform RegisterType) bool {
	for _, pl := range p.AvailablePlatforms {
		if pl == platform {
			return true
		}
	}
	return false
}

func (p *Promotion) SupportsOrderType(orderType OrderType) bool {
	for _, ot := range p.AvailableOrderTypes {
		if ot == orderType {
			return true
		}
	}
	return false
}

// AppliedPromotion is the single promotion currently in effect on the cart,
// together with the discount it produced and the specific line quantities it
// consumed. Always a recomputed value, never persisted on its own.
type AppliedPromotion struct {
	Promotion        *Promotion
	DiscountedAmount int
	MatchingProducts *ItemQuantities
}
