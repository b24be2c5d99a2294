package domain

import "github.com/tabin-ltd/kiosk/internal/availability"

// Catalog side of the data model: a fully materialized Restaurant document as
// supplied by the menu/promotion data provider. The core treats all of this
// as read-only input.

type Modifier struct {
	ID                     string `json:"id" bson:"id"`
	Name                   string `json:"name" bson:"name"`
	Price                  int    `json:"price" bson:"price"`
	PreSelectedQuantity    int    `json:"preSelectedQuantity" bson:"preSelectedQuantity"`
	SoldOut                bool   `json:"soldOut" bson:"soldOut"`
	SoldOutDate            string `json:"soldOutDate,omitempty" bson:"soldOutDate,omitempty"`
	TotalQuantityAvailable int    `json:"totalQuantityAvailable" bson:"totalQuantityAvailable"` // 0 = unlimited
}

type ModifierGroup struct {
	ID        string     `json:"id" bson:"id"`
	Name      string     `json:"name" bson:"name"`
	Modifiers []Modifier `json:"modifiers" bson:"modifiers"`
}

type Product struct {
	ID                     string               `json:"id" bson:"id"`
	Name                   string               `json:"name" bson:"name"`
	Price                  int                  `json:"price" bson:"price"`
	SoldOut                bool                 `json:"soldOut" bson:"soldOut"`
	SoldOutDate            string               `json:"soldOutDate,omitempty" bson:"soldOutDate,omitempty"`
	TotalQuantityAvailable int                  `json:"totalQuantityAvailable" bson:"totalQuantityAvailable"` // 0 = unlimited
	Availability           *availability.Weekly `json:"availability,omitempty" bson:"availability,omitempty"`
	ModifierGroups         []ModifierGroup      `json:"modifierGroups,omitempty" bson:"modifierGroups,omitempty"`
}

type Category struct {
	ID           string               `json:"id" bson:"id"`
	Name         string               `json:"name" bson:"name"`
	Availability *availability.Weekly `json:"availability,omitempty" bson:"availability,omitempty"`
	Products     []Product            `json:"products" bson:"products"`
}

type Restaurant struct {
	ID                       string      `json:"id" bson:"_id"`
	Name                     string      `json:"name" bson:"name"`
	Address                  string      `json:"address" bson:"address"`
	GSTNumber                string      `json:"gstNumber" bson:"gstNumber"`
	AutoCompleteOrders       bool        `json:"autoCompleteOrders" bson:"autoCompleteOrders"`
	PreparationTimeInMinutes int         `json:"preparationTimeInMinutes" bson:"preparationTimeInMinutes"`
	Categories               []Category  `json:"categories" bson:"categories"`
	Promotions               []Promotion `json:"promotions" bson:"promotions"`
}
