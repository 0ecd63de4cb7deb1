package marketapi

import (
	"context"
	"net/http"

	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/domain/trade"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
)

// OrderAPI covers /orders for buyers and sellers.
type OrderAPI struct{ base }

// Create places an order from the server-side cart
func (o *OrderAPI) Create(ctx context.Context, in trade.OrderInput) (trade.Order, error) {
	resp, err := o.authed(ctx, http.MethodPost, "/orders", nil, in)
	if err != nil {
		return trade.Order{}, err
	}
	return apiclient.Decode[trade.Order](resp)
}

// List returns the caller's orders. Sellers see orders containing their products.
func (o *OrderAPI) List(ctx context.Context) ([]trade.Order, error) {
	resp, err := o.get(ctx, "/orders", nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]trade.Order](resp)
}

// Get returns one order with its items
func (o *OrderAPI) Get(ctx context.Context, id shared.ID) (trade.Order, error) {
	resp, err := o.get(ctx, route("/orders", id), nil)
	if err != nil {
		return trade.Order{}, err
	}
	return apiclient.Decode[trade.Order](resp)
}

// UpdateStatus moves an order to status
func (o *OrderAPI) UpdateStatus(ctx context.Context, id shared.ID, status trade.OrderStatus) error {
	resp, err := o.authed(ctx, http.MethodPut, route("/orders", id, "status"), nil, trade.StatusUpdate{Status: status})
	if err != nil {
		return err
	}
	return apiclient.DecodeAck(resp)
}
