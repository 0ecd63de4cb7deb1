// Package admin holds the dashboard statistics and list filters of the admin
// panel.
package admin

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/TheRipper284/frontend/internal/domain/shared"
)

// UserStats from GET /admin/users/stats
type UserStats struct {
	TotalUsers  int            `json:"totalUsers" validate:"gte=0"`
	UsersByRole map[string]int `json:"usersByRole"`
}

// ProductStats from GET /admin/products/stats
type ProductStats struct {
	TotalProducts    int            `json:"totalProducts" validate:"gte=0"`
	ProductsByStatus map[string]int `json:"productsByStatus,omitempty"`
}

// RecentOrder is a row of the dashboard's recent orders table
type RecentOrder struct {
	ID       shared.ID       `json:"id"`
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount"`
	Status   string          `json:"status"`
	Date     *time.Time      `json:"date,omitempty"`
}

// OrderStats from GET /admin/orders/stats
type OrderStats struct {
	TotalOrders  int             `json:"totalOrders" validate:"gte=0"`
	TotalSales   decimal.Decimal `json:"totalSales"`
	RecentOrders []RecentOrder   `json:"recentOrders"`
}

// Dashboard combines the three stats endpoints
type Dashboard struct {
	TotalUsers    int             `json:"totalUsers" yaml:"totalUsers"`
	UsersByRole   map[string]int  `json:"usersByRole" yaml:"usersByRole"`
	TotalProducts int             `json:"totalProducts" yaml:"totalProducts"`
	TotalOrders   int             `json:"totalOrders" yaml:"totalOrders"`
	TotalSales    decimal.Decimal `json:"totalSales" yaml:"totalSales"`
	RecentOrders  []RecentOrder   `json:"recentOrders" yaml:"recentOrders"`
}

// NewDashboard merges the stats responses. Missing role buckets read as 0.
func NewDashboard(u UserStats, p ProductStats, o OrderStats) Dashboard {
	roles := map[string]int{"buyer": 0, "seller": 0, "admin": 0}
	for k, v := range u.UsersByRole {
		roles[k] = v
	}
	return Dashboard{
		TotalUsers:    u.TotalUsers,
		UsersByRole:   roles,
		TotalProducts: p.TotalProducts,
		TotalOrders:   o.TotalOrders,
		TotalSales:    o.TotalSales,
		RecentOrders:  o.RecentOrders,
	}
}

// ListQuery is the common page/limit/sort/order filter of admin lists.
// Filter holds the list-specific extras (role, category, status).
type ListQuery struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Filter map[string]string
}

// DefaultListQuery matches the admin panel defaults
func DefaultListQuery() ListQuery {
	return ListQuery{Page: 1, Limit: 10, Sort: "created_at", Order: "desc"}
}

// Params renders the query. Empty filters and the "all" wildcard are dropped.
func (q ListQuery) Params() map[string]string {
	d := DefaultListQuery()
	if q.Page <= 0 {
		q.Page = d.Page
	}
	if q.Limit <= 0 {
		q.Limit = d.Limit
	}
	if q.Sort == "" {
		q.Sort = d.Sort
	}
	if q.Order == "" {
		q.Order = d.Order
	}

	p := map[string]string{
		"page":  strconv.Itoa(q.Page),
		"limit": strconv.Itoa(q.Limit),
		"sort":  q.Sort,
		"order": q.Order,
	}
	for k, v := range q.Filter {
		if v != "" && v != "all" {
			p[k] = v
		}
	}
	return p
}

// UserUpdate is the body of PUT /admin/users/:id
type UserUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=buyer seller admin"`
}

// StatusChange is the body of the PATCH .../status routes
type StatusChange struct {
	Status string `json:"status" validate:"required"`
}
