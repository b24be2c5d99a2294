package domain

// ItemQuantity is one entry of a quantity aggregate: a product, category or
// modifier id with its running cart quantity. CategoryID is only set for
// product entries.
type ItemQuantity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Quantity   int    `json:"quantity"`
	CategoryID string `json:"categoryId,omitempty"`
}

// ItemQuantities is an id-keyed aggregate that remembers insertion order.
// The promotion matcher sorts candidates by price and breaks ties by the
// order entries came out of the aggregate, so iteration must be
// deterministic; a plain map is not.
type ItemQuantities struct {
	byID  map[string]int // index into items
	items []ItemQuantity
}

func NewItemQuantities() *ItemQuantities {
	return &ItemQuantities{byID: map[string]int{}}
}

// Accumulate adds the entry's quantity onto an existing entry with the same
// id, or appends it.
func (q *ItemQuantities) Accumulate(item ItemQuantity) {
	if i, ok := q.byID[item.ID]; ok {
		q.items[i].Quantity += item.Quantity
		return
	}
	q.byID[item.ID] = len(q.items)
	q.items = append(q.items, item)
}

// Set inserts or overwrites the entry with the same id.
func (q *ItemQuantities) Set(item ItemQuantity) {
	if i, ok := q.byID[item.ID]; ok {
		q.items[i] = item
		return
	}
	q.byID[item.ID] = len(q.items)
	q.items = append(q.items, item)
}

func (q *ItemQuantities) Get(id string) (ItemQuantity, bool) {
	if q == nil {
		return ItemQuantity{}, false
	}
	i, ok := q.byID[id]
	if !ok {
		return ItemQuantity{}, false
	}
	return q.items[i], true
}

// Values returns entries in insertion order. The slice is a copy; mutating it
// does not affect the aggregate.
func (q *ItemQuantities) Values() []ItemQuantity {
	if q == nil {
		return nil
	}
	out := make([]ItemQuantity, len(q.items))
	copy(out, q.items)
	return out
}

func (q *ItemQuantities) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
