package trade

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TheRipper284/frontend/internal/domain/catalog"
	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/domain/trade"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
)

// detailFetchLimit bounds the concurrent GET /orders/:id calls
const detailFetchLimit = 4

// ErrSellerDataUnavailable is returned when neither products nor orders
// could be loaded.
var ErrSellerDataUnavailable = errors.New("dashboard: seller data unavailable")

// ProductLister is the catalog side of the seller dashboard.
type ProductLister interface {
	ListProducts(ctx context.Context, q catalog.ProductQuery) ([]catalog.Product, error)
}

// DashboardService builds the seller dashboard.
type DashboardService struct {
	orders   OrderAPI
	products ProductLister
	session  Session
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewDashboardService creates a dashboard service. notifier and logger may
// be nil.
func NewDashboardService(orders OrderAPI, products ProductLister, session Session, notifier notify.Notifier, logger *zap.Logger) *DashboardService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		orders:   orders,
		products: products,
		session:  session,
		notifier: notifier,
		logger:   logger.Named("dashboard"),
	}
}

// SellerDashboard counts the caller's listings and orders and sums the
// seller's share of paid and delivered orders. Every fetch is best-effort:
// a failed one is logged and leaves its figure at zero. Only when both the
// product and the order list fail is an error returned.
func (s *DashboardService) SellerDashboard(ctx context.Context) (trade.SellerDashboard, error) {
	user, err := s.seller()
	if err != nil {
		return trade.SellerDashboard{}, err
	}

	var (
		products             []catalog.Product
		orders               []trade.Order
		productErr, orderErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		products, productErr = s.products.ListProducts(ctx, catalog.ProductQuery{Seller: user.ID.String()})
		return nil
	})
	g.Go(func() error {
		orders, orderErr = s.orders.List(ctx)
		return nil
	})
	_ = g.Wait()

	if productErr != nil {
		s.logger.Warn("Failed to load seller products", zap.Error(productErr))
	}
	if orderErr != nil {
		s.logger.Warn("Failed to load seller orders", zap.Error(orderErr))
	}
	if productErr != nil && orderErr != nil {
		s.notifier.Error(notify.MsgSellerDataFailed)
		return trade.SellerDashboard{}, errors.Join(ErrSellerDataUnavailable, productErr, orderErr)
	}

	owned := 0
	for _, p := range products {
		if p.SellerID == user.ID {
			owned++
		}
	}
	return trade.NewSellerDashboard(owned, orders, s.revenue(ctx, orders)), nil
}

// revenue fetches the detail of every revenue-earning order and sums its
// seller_total. Orders whose detail fails or lacks the field add nothing.
func (s *DashboardService) revenue(ctx context.Context, orders []trade.Order) decimal.Decimal {
	totals := make([]decimal.Decimal, len(orders))
	var g errgroup.Group
	g.SetLimit(detailFetchLimit)
	for i, o := range orders {
		if !o.Status.EarnsRevenue() {
			continue
		}
		g.Go(func() error {
			detail, err := s.orders.Get(ctx, o.ID)
			if err != nil {
				s.logger.Warn("Failed to load order detail",
					zap.String("order_id", o.ID.String()),
					zap.Error(err),
				)
				return nil
			}
			if detail.SellerTotal != nil {
				totals[i] = *detail.SellerTotal
			}
			return nil
		})
	}
	_ = g.Wait()

	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum
}

func (s *DashboardService) seller() (*identity.User, error) {
	user := s.session.User()
	if user == nil {
		s.notifier.Error(notify.MsgLoginRequired)
		return nil, apiclient.ErrNotAuthenticated
	}
	if !user.HasRole(identity.RoleSeller) {
		s.notifier.Error(notify.MsgAccessDenied)
		return nil, shared.ErrForbidden
	}
	return user, nil
}
