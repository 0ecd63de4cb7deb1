// Package trade covers orders, their status lifecycle and payment.
package trade

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/TheRipper284/frontend/internal/domain/shared"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// EarnsRevenue reports whether the order counts toward a seller's revenue
func (s OrderStatus) EarnsRevenue() bool {
	return s == OrderStatusPaid || s == OrderStatusDelivered
}

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusPaid || target == OrderStatusCancelled
	case OrderStatusPaid:
		return target == OrderStatusShipped
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// BuyerActions returns the statuses a buyer may move an order to: cancel
// while pending, confirm delivery once shipped.
func (s OrderStatus) BuyerActions() []OrderStatus {
	switch s {
	case OrderStatusPending:
		return []OrderStatus{OrderStatusCancelled}
	case OrderStatusShipped:
		return []OrderStatus{OrderStatusDelivered}
	}
	return nil
}

// SellerActions returns the statuses a seller may move an order to
func (s OrderStatus) SellerActions() []OrderStatus {
	switch s {
	case OrderStatusPending:
		return []OrderStatus{OrderStatusPaid, OrderStatusCancelled}
	case OrderStatusPaid:
		return []OrderStatus{OrderStatusShipped}
	case OrderStatusShipped:
		return []OrderStatus{OrderStatusDelivered}
	}
	return nil
}

// Allows reports whether target is among actions
func Allows(actions []OrderStatus, target OrderStatus) bool {
	for _, a := range actions {
		if a == target {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order
type OrderItem struct {
	ID         shared.ID       `json:"id"`
	ProductID  shared.ID       `json:"product_id,omitempty"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity" validate:"gte=1"`
	ImageURL   string          `json:"image_url,omitempty"`
	SellerName string          `json:"seller_name,omitempty"`
}

// Order as returned by /orders
type Order struct {
	ID              shared.ID       `json:"id" validate:"required"`
	Status          OrderStatus     `json:"status" validate:"required"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress string          `json:"shipping_address,omitempty"`
	PaymentMethod   PaymentMethod   `json:"payment_method,omitempty"`
	BuyerName       string          `json:"buyer_name,omitempty"`
	// SellerTotal is the caller's share of the order. Only GET /orders/:id
	// fills it, and only for sellers.
	SellerTotal *decimal.Decimal `json:"seller_total,omitempty"`
	Items       []OrderItem      `json:"items,omitempty" validate:"dive"`
	CreatedAt   *time.Time       `json:"created_at,omitempty"`
}

// OrderInput is the body of POST /orders. The server builds the items from
// its copy of the cart.
type OrderInput struct {
	ShippingAddress string        `json:"shipping_address" validate:"required"`
	PaymentMethod   PaymentMethod `json:"payment_method" validate:"required,oneof=card oxxo transfer"`
}

// StatusUpdate is the body of PUT /orders/:id/status
type StatusUpdate struct {
	Status OrderStatus `json:"status" validate:"required"`
}
