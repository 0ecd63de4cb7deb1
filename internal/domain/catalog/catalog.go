// Package catalog describes products, categories and reviews as the API
// exposes them.
package catalog

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/TheRipper284/frontend/internal/domain/cart"
	"github.com/TheRipper284/frontend/internal/domain/shared"
)

// ProductStatus of a listing
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// IsValid checks if the status is known
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// Product is a marketplace listing
type Product struct {
	ID            shared.ID       `json:"id" validate:"required"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock" validate:"gte=0"`
	ImageURL      string          `json:"image_url,omitempty"`
	CategoryID    shared.ID       `json:"category_id,omitempty"`
	CategoryName  string          `json:"category_name,omitempty"`
	SellerID      shared.ID       `json:"seller_id,omitempty"`
	SellerName    string          `json:"seller_name,omitempty"`
	Status        ProductStatus   `json:"status,omitempty"`
	Views         int             `json:"views,omitempty"`
	AverageRating *float64        `json:"average_rating,omitempty"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
}

// CartProduct returns the fields a cart line item keeps
func (p Product) CartProduct() cart.Product {
	return cart.Product{
		ID:         p.ID,
		Title:      p.Title,
		Price:      p.Price,
		ImageURL:   p.ImageURL,
		SellerName: p.SellerName,
	}
}

// InStock reports whether quantity units are available
func (p Product) InStock(quantity int) bool {
	return quantity > 0 && quantity <= p.Stock
}

// ClampQuantity bounds q to [1, stock]. The cart store enforces no upper
// bound, so callers clamp before adding.
func (p Product) ClampQuantity(q int) int {
	if q < 1 {
		q = 1
	}
	if p.Stock > 0 && q > p.Stock {
		q = p.Stock
	}
	return q
}

// ProductInput is the body of a product create or update. Sellers send it as
// multipart form fields so an image can ride along; admins send JSON.
type ProductInput struct {
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  shared.ID       `json:"category_id" validate:"required"`
	Status      ProductStatus   `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// Fields renders the input as form fields
func (in ProductInput) Fields() map[string]string {
	f := map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"price":       in.Price.StringFixed(2),
		"stock":       strconv.Itoa(in.Stock),
		"category_id": in.CategoryID.String(),
	}
	if in.Status != "" {
		f["status"] = string(in.Status)
	}
	return f
}

// Category groups products
type Category struct {
	ID           shared.ID `json:"id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Description  string    `json:"description,omitempty"`
	ProductCount int       `json:"product_count,omitempty"`
}

// CategoryInput is the body of a category create or update
type CategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// Review of a product by a buyer
type Review struct {
	ID           shared.ID  `json:"id" validate:"required"`
	ProductID    shared.ID  `json:"product_id,omitempty"`
	Rating       int        `json:"rating" validate:"gte=1,lte=5"`
	Comment      string     `json:"comment"`
	ReviewerName string     `json:"reviewer_name,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// ReviewInput is the body of POST /reviews
type ReviewInput struct {
	ProductID shared.ID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating" validate:"gte=1,lte=5"`
	Comment   string    `json:"comment" validate:"required"`
}

// Sort orders accepted by GET /products
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)

// ProductQuery filters GET /products. Zero fields are not sent.
type ProductQuery struct {
	Search   string
	Category string
	MinPrice string
	MaxPrice string
	Sort     string
	Seller   string
	Limit    int
	Page     int
}

// Params renders the query as URL parameters
func (q ProductQuery) Params() map[string]string {
	p := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			p[k] = v
		}
	}
	set("search", q.Search)
	set("category", q.Category)
	set("min_price", q.MinPrice)
	set("max_price", q.MaxPrice)
	set("sort", q.Sort)
	set("seller", q.Seller)
	if q.Limit > 0 {
		p["limit"] = strconv.Itoa(q.Limit)
	}
	if q.Page > 0 {
		p["page"] = strconv.Itoa(q.Page)
	}
	return p
}
