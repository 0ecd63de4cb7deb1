package trade

import "github.com/shopspring/decimal"

// RecentOrderCount is how many orders the seller dashboard lists
const RecentOrderCount = 5

// SellerDashboard summarises a seller's listings and orders. TotalSales
// counts delivered orders; TotalRevenue sums the seller's share of paid and
// delivered ones.
type SellerDashboard struct {
	TotalProducts int             `json:"totalProducts" yaml:"totalProducts"`
	PendingOrders int             `json:"pendingOrders" yaml:"pendingOrders"`
	TotalSales    int             `json:"totalSales" yaml:"totalSales"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue" yaml:"totalRevenue"`
	RecentOrders  []Order         `json:"recentOrders" yaml:"recentOrders"`
}

// NewSellerDashboard counts orders by status and keeps the first
// RecentOrderCount of them, in the order the server listed them.
func NewSellerDashboard(products int, orders []Order, revenue decimal.Decimal) SellerDashboard {
	d := SellerDashboard{
		TotalProducts: products,
		TotalRevenue:  revenue,
		RecentOrders:  []Order{},
	}
	for _, o := range orders {
		switch o.Status {
		case OrderStatusPending:
			d.PendingOrders++
		case OrderStatusDelivered:
			d.TotalSales++
		}
	}
	n := min(len(orders), RecentOrderCount)
	d.RecentOrders = append(d.RecentOrders, orders[:n]...)
	return d
}
