package domain

// All monetary amounts are integer cents.

type CartCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CartModifier struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	// Quantity is what the customer selected; PreSelectedQuantity is what came
	// free by default. Only the positive delta is chargeable.
	Quantity            int `json:"quantity"`
	PreSelectedQuantity int `json:"preSelectedQuantity"`
}

// ChargeableQuantity is the modifier quantity that gets charged and
// discounted: selected minus pre-selected, never negative.
func (m CartModifier) ChargeableQuantity() int {
	delta := m.Quantity - m.PreSelectedQuantity
	if delta < 0 {
		return 0
	}
	return delta
}

type CartModifierGroup struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Modifiers []CartModifier `json:"modifiers"`
}

// CartProduct is one line item in the cart. The same product can appear on
// multiple lines (with different modifiers), which is why cart mutations are
// index based.
type CartProduct struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Price          int                 `json:"price"`
	Category       CartCategory        `json:"category"`
	Quantity       int                 `json:"quantity"`
	Notes          string              `json:"notes,omitempty"`
	ModifierGroups []CartModifierGroup `json:"modifierGroups,omitempty"`
}

// ExtendedPrice is the line total: unit price times quantity plus every
// chargeable modifier delta, also multiplied by the line quantity.
func (p CartProduct) ExtendedPrice() int {
	total := p.Price * p.Quantity
	for _, mg := range p.ModifierGroups {
		for _, m := range mg.Modifiers {
			total += m.Price * m.ChargeableQuantity() * p.Quantity
		}
	}
	return total
}

type PaymentType string

const (
	PaymentTypeCash     PaymentType = "CASH"
	PaymentTypeEftpos   PaymentType = "EFTPOS"
	PaymentTypeUberEats PaymentType = "UBEREATS"
	PaymentTypeMenulog  PaymentType = "MENULOG"
)

// Payment is one successful payment entry against the current order. A single
// order can carry several of these (split payments).
type Payment struct {
	Type   PaymentType `json:"type"`
	Amount int         `json:"amount"`
}

type PaymentAmounts struct {
	Cash     int `json:"cash"`
	Eftpos   int `json:"eftpos"`
	UberEats int `json:"uberEats"`
	Menulog  int `json:"menulog"`
}

func (p PaymentAmounts) Total() int {
	return p.Cash + p.Eftpos + p.UberEats + p.Menulog
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINEIN"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
)
