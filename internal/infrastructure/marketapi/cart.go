package marketapi

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/TheRipper284/frontend/internal/domain/cart"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
)

// CartAPI mirrors the local cart to /carts/items.
type CartAPI struct{ base }

// serverItem is the server's cart row, keyed by product
type serverItem struct {
	ProductID    shared.ID       `json:"product_id" validate:"required"`
	ProductTitle string          `json:"product_title"`
	ProductPrice decimal.Decimal `json:"product_price"`
	ProductImage string          `json:"product_image"`
	SellerName   string          `json:"seller_name"`
	Quantity     int             `json:"quantity" validate:"gte=1"`
}

func (s serverItem) product() cart.Product {
	return cart.Product{
		ID:         s.ProductID,
		Title:      s.ProductTitle,
		Price:      s.ProductPrice,
		ImageURL:   s.ProductImage,
		SellerName: s.SellerName,
	}
}

// List returns the server-side cart as line items. Repeated rows for one
// product are merged into a single line.
func (c *CartAPI) List(ctx context.Context) (cart.Lines, error) {
	resp, err := c.get(ctx, "/carts/items", nil)
	if err != nil {
		return nil, err
	}
	rows, err := apiclient.Decode[[]serverItem](resp)
	if err != nil {
		return nil, err
	}
	lines := make(cart.Lines, 0, len(rows))
	for _, r := range rows {
		lines, _ = lines.Add(r.product(), r.Quantity)
	}
	return lines, nil
}

// AddItem adds quantity units of product. The server merges repeats.
func (c *CartAPI) AddItem(ctx context.Context, product shared.ID, quantity int) error {
	return c.ack(c.authed(ctx, http.MethodPost, "/carts/items", nil, map[string]any{
		"product_id": product,
		"quantity":   quantity,
	}))
}

// UpdateItem sets the quantity of product
func (c *CartAPI) UpdateItem(ctx context.Context, product shared.ID, quantity int) error {
	return c.ack(c.authed(ctx, http.MethodPut, route("/carts/items", product), nil, map[string]int{
		"quantity": quantity,
	}))
}

// RemoveItem deletes product from the server cart
func (c *CartAPI) RemoveItem(ctx context.Context, product shared.ID) error {
	return c.ack(c.authed(ctx, http.MethodDelete, route("/carts/items", product), nil, nil))
}

// Clear empties the server cart
func (c *CartAPI) Clear(ctx context.Context) error {
	return c.ack(c.authed(ctx, http.MethodDelete, "/carts/items", nil, nil))
}
