package domain

import "time"

// CartLine is keyed by (ProductID, Size). Name, price and image are
// snapshotted when the line is first added.
type CartLine struct {
	ProductID string    `json:"productId"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	Name      string    `json:"name"`
	PriceText string    `json:"price"`
	Image     string    `json:"image,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// Key returns the composite line key.
func (l CartLine) Key() string {
	return l.ProductID + "|" + l.Size
}

// LineTotal is ParseAmount(price) × quantity.
func (l CartLine) LineTotal() Amount {
	return ParseAmount(l.PriceText).Times(l.Quantity)
}

type Cart struct {
	Lines []CartLine `json:"lines"`
	Total Amount     `json:"total"`
	Count int        `json:"count"`
}

// NewCart builds a cart view with computed totals.
func NewCart(lines []CartLine) Cart {
	if lines == nil {
		lines = []CartLine{}
	}
	return Cart{Lines: lines, Total: CartTotal(lines), Count: ItemCount(lines)}
}

// CartTotal sums the line totals.
func CartTotal(lines []CartLine) Amount {
	var total Amount
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total
}

// ItemCount sums the line quantities.
func ItemCount(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// AddLine adds l to lines. A line with the same (ProductID, Size) absorbs the
// quantity instead of being duplicated. Quantity floors to 1.
func AddLine(lines []CartLine, l CartLine) []CartLine {
	if l.Quantity < 1 {
		l.Quantity = 1
	}
	out := make([]CartLine, len(lines), len(lines)+1)
	copy(out, lines)
	for i := range out {
		if out[i].Key() == l.Key() {
			out[i].Quantity += l.Quantity
			return out
		}
	}
	return append(out, l)
}
