// Package cart holds the buyer's line items and the arithmetic over them.
// Everything here is pure; persistence and server mirroring live in the
// application layer.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/TheRipper284/frontend/internal/domain/shared"
)

// Product is the subset of a catalog product a line item is built from.
type Product struct {
	ID         shared.ID       `json:"id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	ImageURL   string          `json:"image_url,omitempty"`
	SellerName string          `json:"seller_name,omitempty"`
}

// LineItem is one product and the quantity selected. Quantity is always >= 1.
type LineItem struct {
	ID         shared.ID       `json:"id" validate:"required"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	ImageURL   string          `json:"image_url,omitempty"`
	SellerName string          `json:"seller_name,omitempty"`
	Quantity   int             `json:"quantity" validate:"gte=1"`
}

// Subtotal returns price * quantity
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Lines is an ordered list of line items, unique by product id. Insertion
// order is kept. Operations return a new slice and never modify the receiver.
type Lines []LineItem

// Add increments the quantity of p if present, otherwise appends it.
// existed reports which case happened.
func (l Lines) Add(p Product, quantity int) (next Lines, existed bool) {
	next = l.clone()
	for i := range next {
		if next[i].ID == p.ID {
			next[i].Quantity += quantity
			return next, true
		}
	}
	return append(next, LineItem{
		ID:         p.ID,
		Title:      p.Title,
		Price:      p.Price,
		ImageURL:   p.ImageURL,
		SellerName: p.SellerName,
		Quantity:   quantity,
	}), false
}

// Remove drops the item with id. Missing ids leave the list unchanged.
func (l Lines) Remove(id shared.ID) Lines {
	next := make(Lines, 0, len(l))
	for _, li := range l {
		if li.ID != id {
			next = append(next, li)
		}
	}
	return next
}

// SetQuantity overwrites the quantity of id. A quantity <= 0 removes it.
func (l Lines) SetQuantity(id shared.ID, quantity int) Lines {
	if quantity <= 0 {
		return l.Remove(id)
	}
	next := l.clone()
	for i := range next {
		if next[i].ID == id {
			next[i].Quantity = quantity
		}
	}
	return next
}

// Find returns the item with id.
func (l Lines) Find(id shared.ID) (LineItem, bool) {
	for _, li := range l {
		if li.ID == id {
			return li, true
		}
	}
	return LineItem{}, false
}

// Total is the sum of price * quantity.
func (l Lines) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range l {
		total = total.Add(li.Subtotal())
	}
	return total
}

// Count is the sum of quantities.
func (l Lines) Count() int {
	n := 0
	for _, li := range l {
		n += li.Quantity
	}
	return n
}

func (l Lines) clone() Lines {
	if l == nil {
		return Lines{}
	}
	return append(make(Lines, 0, len(l)+1), l...)
}
