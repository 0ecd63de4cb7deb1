package marketapi

import (
	"context"
	"net/http"

	"github.com/TheRipper284/frontend/internal/domain/admin"
	"github.com/TheRipper284/frontend/internal/domain/catalog"
	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/domain/trade"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
)

// AdminAPI covers the /admin panel routes. Every call needs an admin session.
type AdminAPI struct{ base }

// Users lists accounts. Filter "role" narrows by role.
func (a *AdminAPI) Users(ctx context.Context, q admin.ListQuery) (apiclient.Paged[identity.User], error) {
	resp, err := a.get(ctx, "/admin/users", q.Params())
	if err != nil {
		return apiclient.Paged[identity.User]{}, err
	}
	return apiclient.DecodePaged[identity.User](resp)
}

// UserStats returns account totals by role
func (a *AdminAPI) UserStats(ctx context.Context) (admin.UserStats, error) {
	resp, err := a.get(ctx, "/admin/users/stats", nil)
	if err != nil {
		return admin.UserStats{}, err
	}
	return apiclient.DecodeFlat[admin.UserStats](resp)
}

// User returns one account
func (a *AdminAPI) User(ctx context.Context, id shared.ID) (identity.User, error) {
	resp, err := a.get(ctx, route("/admin/users", id), nil)
	if err != nil {
		return identity.User{}, err
	}
	return apiclient.Decode[identity.User](resp)
}

// UpdateUser edits an account
func (a *AdminAPI) UpdateUser(ctx context.Context, id shared.ID, in admin.UserUpdate) error {
	return a.ack(a.authed(ctx, http.MethodPut, route("/admin/users", id), nil, in))
}

// DeleteUser removes an account
func (a *AdminAPI) DeleteUser(ctx context.Context, id shared.ID) error {
	return a.ack(a.authed(ctx, http.MethodDelete, route("/admin/users", id), nil, nil))
}

// SetUserStatus activates or deactivates an account
func (a *AdminAPI) SetUserStatus(ctx context.Context, id shared.ID, status identity.UserStatus) error {
	return a.ack(a.authed(ctx, http.MethodPatch, route("/admin/users", id, "status"), nil,
		admin.StatusChange{Status: string(status)}))
}

// Products lists listings. Filters "category" and "status" narrow the list.
func (a *AdminAPI) Products(ctx context.Context, q admin.ListQuery) (apiclient.Paged[catalog.Product], error) {
	resp, err := a.get(ctx, "/admin/products", q.Params())
	if err != nil {
		return apiclient.Paged[catalog.Product]{}, err
	}
	return apiclient.DecodePaged[catalog.Product](resp)
}

// ProductStats returns listing totals
func (a *AdminAPI) ProductStats(ctx context.Context) (admin.ProductStats, error) {
	resp, err := a.get(ctx, "/admin/products/stats", nil)
	if err != nil {
		return admin.ProductStats{}, err
	}
	return apiclient.DecodeFlat[admin.ProductStats](resp)
}

// Product returns one listing
func (a *AdminAPI) Product(ctx context.Context, id shared.ID) (catalog.Product, error) {
	resp, err := a.get(ctx, route("/admin/products", id), nil)
	if err != nil {
		return catalog.Product{}, err
	}
	return apiclient.Decode[catalog.Product](resp)
}

// UpdateProduct edits a listing
func (a *AdminAPI) UpdateProduct(ctx context.Context, id shared.ID, in catalog.ProductInput) error {
	return a.ack(a.authed(ctx, http.MethodPut, route("/admin/products", id), nil, in))
}

// DeleteProduct removes a listing
func (a *AdminAPI) DeleteProduct(ctx context.Context, id shared.ID) error {
	return a.ack(a.authed(ctx, http.MethodDelete, route("/admin/products", id), nil, nil))
}

// SetProductStatus activates or deactivates a listing
func (a *AdminAPI) SetProductStatus(ctx context.Context, id shared.ID, status catalog.ProductStatus) error {
	return a.ack(a.authed(ctx, http.MethodPatch, route("/admin/products", id, "status"), nil,
		admin.StatusChange{Status: string(status)}))
}

// Categories lists categories with their product counts
func (a *AdminAPI) Categories(ctx context.Context) ([]catalog.Category, error) {
	resp, err := a.get(ctx, "/admin/categories", nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]catalog.Category](resp)
}

// CreateCategory adds a category
func (a *AdminAPI) CreateCategory(ctx context.Context, in catalog.CategoryInput) error {
	return a.ack(a.authed(ctx, http.MethodPost, "/admin/categories", nil, in))
}

// UpdateCategory renames or describes a category
func (a *AdminAPI) UpdateCategory(ctx context.Context, id shared.ID, in catalog.CategoryInput) error {
	return a.ack(a.authed(ctx, http.MethodPut, route("/admin/categories", id), nil, in))
}

// DeleteCategory removes a category
func (a *AdminAPI) DeleteCategory(ctx context.Context, id shared.ID) error {
	return a.ack(a.authed(ctx, http.MethodDelete, route("/admin/categories", id), nil, nil))
}

// Orders lists every order. Filter "status" narrows the list.
func (a *AdminAPI) Orders(ctx context.Context, q admin.ListQuery) (apiclient.Paged[trade.Order], error) {
	resp, err := a.get(ctx, "/admin/orders", q.Params())
	if err != nil {
		return apiclient.Paged[trade.Order]{}, err
	}
	return apiclient.DecodePaged[trade.Order](resp)
}

// OrderStats returns sales totals and the latest orders
func (a *AdminAPI) OrderStats(ctx context.Context) (admin.OrderStats, error) {
	resp, err := a.get(ctx, "/admin/orders/stats", nil)
	if err != nil {
		return admin.OrderStats{}, err
	}
	return apiclient.DecodeFlat[admin.OrderStats](resp)
}

// Order returns one order
func (a *AdminAPI) Order(ctx context.Context, id shared.ID) (trade.Order, error) {
	resp, err := a.get(ctx, route("/admin/orders", id), nil)
	if err != nil {
		return trade.Order{}, err
	}
	return apiclient.Decode[trade.Order](resp)
}

// SetOrderStatus overrides an order's status
func (a *AdminAPI) SetOrderStatus(ctx context.Context, id shared.ID, status trade.OrderStatus) error {
	return a.ack(a.authed(ctx, http.MethodPatch, route("/admin/orders", id, "status"), nil,
		admin.StatusChange{Status: status.String()}))
}
