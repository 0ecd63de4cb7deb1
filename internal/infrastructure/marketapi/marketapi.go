// Package marketapi maps the marketplace REST routes onto typed calls. Each
// area of the API gets its own adapter; all of them share one apiclient.
package marketapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
)

// API bundles the adapters over one client.
type API struct {
	Auth     *AuthAPI
	Cart     *CartAPI
	Catalog  *CatalogAPI
	Orders   *OrderAPI
	Reviews  *ReviewAPI
	Messages *MessageAPI
	Admin    *AdminAPI
}

// New creates every adapter over c.
func New(c *apiclient.Client) *API {
	b := base{client: c}
	return &API{
		Auth:     &AuthAPI{b},
		Cart:     &CartAPI{b},
		Catalog:  &CatalogAPI{b},
		Orders:   &OrderAPI{b},
		Reviews:  &ReviewAPI{b},
		Messages: &MessageAPI{b},
		Admin:    &AdminAPI{b},
	}
}

type base struct {
	client *apiclient.Client
}

// public sends a request that does not need a session.
func (b base) public(ctx context.Context, method, path string, query map[string]string, body any) (*apiclient.Response, error) {
	return b.client.Do(ctx, apiclient.Request{
		Method:      method,
		Path:        path,
		QueryParams: query,
		Body:        body,
	})
}

// authed sends a request that needs a session token.
func (b base) authed(ctx context.Context, method, path string, query map[string]string, body any) (*apiclient.Response, error) {
	return b.client.Do(ctx, apiclient.Request{
		Method:      method,
		Path:        path,
		QueryParams: query,
		Body:        body,
		RequireAuth: true,
	})
}

func (b base) get(ctx context.Context, path string, query map[string]string) (*apiclient.Response, error) {
	return b.authed(ctx, http.MethodGet, path, query, nil)
}

// ack decodes a response that carries no payload.
func (b base) ack(resp *apiclient.Response, err error) error {
	if err != nil {
		return err
	}
	return apiclient.DecodeAck(resp)
}

// route joins a collection path with escaped ids and literal suffixes:
// route("/orders", id, "status") is /orders/<id>/status.
func route(collection string, id shared.ID, suffix ...string) string {
	parts := append([]string{collection, url.PathEscape(id.String())}, suffix...)
	return strings.Join(parts, "/")
}
