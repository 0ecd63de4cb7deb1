package marketapi

import (
	"context"
	"net/http"

	"github.com/TheRipper284/frontend/internal/domain/catalog"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
)

// ReviewAPI covers /reviews.
type ReviewAPI struct{ base }

// ListForProduct returns the reviews of a product
func (r *ReviewAPI) ListForProduct(ctx context.Context, product shared.ID) ([]catalog.Review, error) {
	resp, err := r.public(ctx, http.MethodGet, route("/reviews/product", product), nil, nil)
	if err != nil {
		return nil, err
	}
	return apiclient.Decode[[]catalog.Review](resp)
}

// CanReview reports whether the caller bought product and has not reviewed it
func (r *ReviewAPI) CanReview(ctx context.Context, product shared.ID) (bool, error) {
	resp, err := r.get(ctx, route("/reviews/can-review", product), nil)
	if err != nil {
		return false, err
	}
	out, err := apiclient.DecodeFlat[struct {
		CanReview bool `json:"canReview"`
	}](resp)
	if err != nil {
		return false, err
	}
	return out.CanReview, nil
}

// Create posts a review and returns its id
func (r *ReviewAPI) Create(ctx context.Context, in catalog.ReviewInput) (shared.ID, error) {
	resp, err := r.authed(ctx, http.MethodPost, "/reviews", nil, in)
	if err != nil {
		return "", err
	}
	out, err := apiclient.Decode[struct {
		ID shared.ID `json:"id"`
	}](resp)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}
