package domain

import "time"

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusParked    OrderStatus = "PARKED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type OrderModifier struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

type OrderModifierGroup struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Modifiers []OrderModifier `json:"modifiers"`
}

type OrderProduct struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Price          int                  `json:"price"`
	Quantity       int                  `json:"quantity"`
	Notes          string               `json:"notes,omitempty"`
	Category       CartCategory         `json:"category"`
	ModifierGroups []OrderModifierGroup `json:"modifierGroups,omitempty"`
}

// Order is the fully-formed submission payload plus what the backend hands
// back. Optional fields are omitted entirely rather than sent empty.
type Order struct {
	ID             string         `json:"id"`
	Status         OrderStatus    `json:"status"`
	Paid           bool           `json:"paid"`
	Type           OrderType      `json:"type"`
	Number         string         `json:"number"`
	Table          string         `json:"table,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	BuzzerNumber   string         `json:"buzzer,omitempty"`
	EftposReceipt  string         `json:"eftposReceipt,omitempty"`
	Total          int            `json:"total"`
	Discount       int            `json:"discount,omitempty"`
	PromotionID    string         `json:"promotionId,omitempty"`
	SubTotal       int            `json:"subTotal"`
	PaymentAmounts PaymentAmounts `json:"paymentAmounts"`
	Products       []OrderProduct `json:"products"`
	PlacedAt       string         `json:"placedAt"`
	PlacedAtUTC    string         `json:"placedAtUtc"`
	CompletedAt    string         `json:"completedAt,omitempty"`
	CompletedAtUTC string         `json:"completedAtUtc,omitempty"`
	RegisterID     string         `json:"registerId"`
	UserID         string         `json:"userId"`
	RestaurantID   string         `json:"restaurantId"`
	OnlineOrder    bool           `json:"onlineOrder"`
}

// LocalISO renders a timestamp as a local-time ISO string without a zone
// suffix, the format the backend expects alongside the UTC timestamp.
func LocalISO(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000")
}
