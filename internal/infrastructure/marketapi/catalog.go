package marketapi

import (
	"context"
	"net/http"

	"github.com/TheRipper284/frontend/internal/domain/catalog"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
)

// CatalogAPI covers products and categories.
type CatalogAPI struct{ base }

// ListProducts searches the catalog. Browsing works without a session.
func (c *CatalogAPI) ListProducts(ctx context.Context, q catalog.ProductQuery) ([]catalog.Product, error) {
	resp, err := c.public(ctx, http.MethodGet, "/products", q.Params(), nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]catalog.Product](resp)
}

// GetProduct returns one product
func (c *CatalogAPI) GetProduct(ctx context.Context, id shared.ID) (catalog.Product, error) {
	resp, err := c.public(ctx, http.MethodGet, route("/products", id), nil, nil)
	if err != nil {
		return catalog.Product{}, err
	}
	return apiclient.Decode[catalog.Product](resp)
}

// RecordView bumps the product's view counter
func (c *CatalogAPI) RecordView(ctx context.Context, id shared.ID) error {
	resp, err := c.public(ctx, http.MethodPost, route("/products", id, "view"), nil, nil)
	if err != nil {
		return err
	}
	return apiclient.DecodeAck(resp)
}

// SellerProducts lists the caller's own listings
func (c *CatalogAPI) SellerProducts(ctx context.Context) ([]catalog.Product, error) {
	resp, err := c.get(ctx, "/products/seller", nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]catalog.Product](resp)
}

// ListCategories returns every category
func (c *CatalogAPI) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	resp, err := c.public(ctx, http.MethodGet, "/categories", nil, nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]catalog.Category](resp)
}

// CreateProduct publishes a listing. image may be nil.
func (c *CatalogAPI) CreateProduct(ctx context.Context, in catalog.ProductInput, image *apiclient.FilePart) (catalog.Product, error) {
	resp, err := c.client.PostMultipart(ctx, "/products", in.Fields(), image)
	if err != nil {
		return catalog.Product{}, err
	}
	return apiclient.Decode[catalog.Product](resp)
}

// UpdateProduct replaces a listing's fields, and its image when given
func (c *CatalogAPI) UpdateProduct(ctx context.Context, id shared.ID, in catalog.ProductInput, image *apiclient.FilePart) (catalog.Product, error) {
	resp, err := c.client.PutMultipart(ctx, route("/products", id), in.Fields(), image)
	if err != nil {
		return catalog.Product{}, err
	}
	return apiclient.Decode[catalog.Product](resp)
}

// DeleteProduct removes a listing
func (c *CatalogAPI) DeleteProduct(ctx context.Context, id shared.ID) error {
	resp, err := c.authed(ctx, http.MethodDelete, route("/products", id), nil, nil)
	if err != nil {
		return err
	}
	return apiclient.DecodeAck(resp)
}
