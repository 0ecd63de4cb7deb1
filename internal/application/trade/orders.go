// Package trade lets buyers and sellers follow their orders and move them
// through the status lifecycle.
package trade

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/domain/trade"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
)

// ErrTransitionNotAllowed is returned when the caller's role cannot move the
// order to the requested status.
var ErrTransitionNotAllowed = errors.New("order: status transition not allowed")

// OrderAPI is the remote side of orders.
type OrderAPI interface {
	List(ctx context.Context) ([]trade.Order, error)
	Get(ctx context.Context, id shared.ID) (trade.Order, error)
	UpdateStatus(ctx context.Context, id shared.ID, status trade.OrderStatus) error
}

// Session exposes the signed-in user.
type Session interface {
	User() *identity.User
}

// OrderService serves the order pages.
type OrderService struct {
	api       OrderAPI
	session   Session
	confirmer notify.Confirmer
	notifier  notify.Notifier
	logger    *zap.Logger
}

// NewOrderService creates an order service. confirmer, notifier and logger
// may be nil; a nil confirmer declines everything.
func NewOrderService(api OrderAPI, session Session, confirmer notify.Confirmer, notifier notify.Notifier, logger *zap.Logger) *OrderService {
	if confirmer == nil {
		confirmer = notify.AutoConfirm(false)
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		api:       api,
		session:   session,
		confirmer: confirmer,
		notifier:  notifier,
		logger:    logger.Named("orders"),
	}
}

// List returns the caller's orders
func (s *OrderService) List(ctx context.Context) ([]trade.Order, error) {
	if _, err := s.signedIn(); err != nil {
		return nil, err
	}
	orders, err := s.api.List(ctx)
	if err != nil {
		s.logger.Warn("Failed to list orders", zap.Error(err))
		s.notifier.Error(notify.MsgOrdersLoadFailed)
		return nil, err
	}
	return orders, nil
}

// Get returns one order with its items
func (s *OrderService) Get(ctx context.Context, id shared.ID) (trade.Order, error) {
	if _, err := s.signedIn(); err != nil {
		return trade.Order{}, err
	}
	order, err := s.api.Get(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to load order", zap.String("order_id", id.String()), zap.Error(err))
		s.notifier.Error(notify.MsgOrderLoadFailed)
		return trade.Order{}, err
	}
	return order, nil
}

// Actions returns the statuses the signed-in user may move order to.
// Admins use the admin panel instead and get none here.
func (s *OrderService) Actions(order trade.Order) []trade.OrderStatus {
	user := s.session.User()
	if user == nil {
		return nil
	}
	switch user.Role {
	case identity.RoleBuyer:
		return order.Status.BuyerActions()
	case identity.RoleSeller:
		return order.Status.SellerActions()
	}
	return nil
}

// ChangeStatus moves order id to target after checking the caller's role
// allows it. Cancelling asks for confirmation first.
func (s *OrderService) ChangeStatus(ctx context.Context, id shared.ID, target trade.OrderStatus) (trade.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return trade.Order{}, err
	}

	if !trade.Allows(s.Actions(order), target) {
		s.notifier.Error(notify.MsgTransitionInvalid)
		return order, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, order.Status, target)
	}
	if target == trade.OrderStatusCancelled && !s.confirmer.Confirm(notify.MsgConfirmCancelOrder, id.String()) {
		s.notifier.Error(notify.MsgActionCancelled)
		return order, shared.ErrCancelled
	}

	if err := s.api.UpdateStatus(ctx, id, target); err != nil {
		s.logger.Warn("Failed to update order status",
			zap.String("order_id", id.String()),
			zap.String("target", target.String()),
			zap.Error(err),
		)
		s.notifier.Error(apiclient.Message(err, notify.MsgOrderStatusFailed))
		return order, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("from", order.Status.String()),
		zap.String("to", target.String()),
	)
	s.notifier.Success(notify.MsgOrderStatusOK)
	order.Status = target
	return order, nil
}

func (s *OrderService) signedIn() (*identity.User, error) {
	user := s.session.User()
	if user == nil {
		s.notifier.Error(notify.MsgLoginRequired)
		return nil, apiclient.ErrNotAuthenticated
	}
	return user, nil
}
