// Package checkout turns the cart into an order: it validates the form, runs
// the sandbox payment and creates the order on the server.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TheRipper284/frontend/internal/domain/cart"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/domain/trade"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/navigation"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
)

// Checkout errors. API failures are returned wrapped.
var (
	ErrEmptyCart        = errors.New("checkout: cart is empty")
	ErrShippingRequired = errors.New("checkout: shipping address is required")
	ErrPaymentDeclined  = errors.New("checkout: payment declined")
)

// OrderAPI creates orders and moves their status.
type OrderAPI interface {
	Create(ctx context.Context, in trade.OrderInput) (trade.Order, error)
	UpdateStatus(ctx context.Context, id shared.ID, status trade.OrderStatus) error
}

// Cart is the part of the cart store checkout reads and clears.
type Cart interface {
	Items() cart.Lines
	Total() decimal.Decimal
	ClearCart(ctx context.Context)
}

// Session reports whether a buyer is signed in.
type Session interface {
	IsAuthenticated() bool
}

// Input is the checkout form.
type Input struct {
	ShippingAddress string
	PaymentMethod   trade.PaymentMethod
	Card            trade.Card
}

// Result of a placed order.
type Result struct {
	Order   trade.Order
	Payment trade.PaymentResult
	Total   decimal.Decimal
}

// Service places orders.
type Service struct {
	orders   OrderAPI
	cart     Cart
	session  Session
	notifier notify.Notifier
	nav      navigation.Navigator
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a checkout service. notifier, nav and logger may be nil.
func NewService(orders OrderAPI, c Cart, session Session, notifier notify.Notifier, nav navigation.Navigator, logger *zap.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if nav == nil {
		nav = navigation.Func(func(string) {})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:   orders,
		cart:     c,
		session:  session,
		notifier: notifier,
		nav:      nav,
		logger:   logger.Named("checkout"),
		now:      time.Now,
	}
}

// SetClock overrides the clock used for card expiry checks
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// PlaceOrder runs the whole checkout. A paid order clears the cart; a
// pending one (cash or transfer) keeps it.
func (s *Service) PlaceOrder(ctx context.Context, in Input) (Result, error) {
	if !s.session.IsAuthenticated() {
		s.notifier.Error(notify.MsgLoginRequired)
		s.nav.Navigate(navigation.PathLogin)
		return Result{}, shared.ErrForbidden
	}
	if len(s.cart.Items()) == 0 {
		s.notifier.Error(notify.MsgCartEmpty)
		return Result{}, ErrEmptyCart
	}

	input := trade.OrderInput{
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		PaymentMethod:   in.PaymentMethod,
	}
	if input.ShippingAddress == "" {
		s.notifier.Error(notify.MsgShippingRequired)
		return Result{}, ErrShippingRequired
	}
	if err := apiclient.Validator().Struct(input); err != nil {
		s.notifier.Error(notify.MsgFillRequired)
		return Result{}, fmt.Errorf("%w: payment method %q", shared.ErrInvalidInput, in.PaymentMethod)
	}

	payment, err := trade.SimulatePayment(in.PaymentMethod, in.Card, s.now())
	switch {
	case errors.Is(err, trade.ErrCardIncomplete):
		s.notifier.Error(notify.MsgCardIncomplete)
		return Result{}, err
	case errors.Is(err, trade.ErrCardUnknown):
		s.notifier.Error(notify.MsgCardUnknown)
		return Result{}, err
	case err != nil:
		s.notifier.Error(notify.MsgOrderFailed)
		return Result{}, err
	}
	if !payment.Approved {
		s.logger.Info("Payment declined", zap.String("outcome", string(payment.Outcome)))
		s.notifier.Error(payment.Message)
		return Result{Payment: payment}, fmt.Errorf("%w: %s", ErrPaymentDeclined, payment.Outcome)
	}

	total := s.cart.Total()
	order, err := s.orders.Create(ctx, input)
	if err != nil {
		s.logger.Warn("Failed to create order", zap.Error(err))
		s.notifier.Error(notify.MsgOrderFailed)
		return Result{Payment: payment}, fmt.Errorf("creating order: %w", err)
	}

	if payment.Status == trade.OrderStatusPaid {
		if err := s.orders.UpdateStatus(ctx, order.ID, trade.OrderStatusPaid); err != nil {
			s.logger.Warn("Failed to mark order paid",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
			s.notifier.Error(notify.MsgOrderFailed)
			return Result{Order: order, Payment: payment}, fmt.Errorf("marking order paid: %w", err)
		}
		order.Status = trade.OrderStatusPaid
		s.cart.ClearCart(ctx)
		s.notifier.Success(notify.MsgPaymentApproved)
	} else {
		s.notifier.Success(notify.MsgOrderPending, payment.Status.String())
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("status", order.Status.String()),
		zap.String("total", total.StringFixed(2)),
	)
	s.nav.Navigate(navigation.OrderPath(order.ID.String()))
	return Result{Order: order, Payment: payment, Total: total}, nil
}
