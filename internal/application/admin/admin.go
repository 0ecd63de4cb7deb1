// Package admin implements the admin panel: dashboard statistics and the
// management of users, products, categories and orders.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TheRipper284/frontend/internal/domain/admin"
	"github.com/TheRipper284/frontend/internal/domain/catalog"
	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/domain/trade"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
)

// API is the remote side of the admin panel.
type API interface {
	Users(ctx context.Context, q admin.ListQuery) (apiclient.Paged[identity.User], error)
	UserStats(ctx context.Context) (admin.UserStats, error)
	User(ctx context.Context, id shared.ID) (identity.User, error)
	UpdateUser(ctx context.Context, id shared.ID, in admin.UserUpdate) error
	DeleteUser(ctx context.Context, id shared.ID) error
	SetUserStatus(ctx context.Context, id shared.ID, status identity.UserStatus) error

	Products(ctx context.Context, q admin.ListQuery) (apiclient.Paged[catalog.Product], error)
	ProductStats(ctx context.Context) (admin.ProductStats, error)
	Product(ctx context.Context, id shared.ID) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id shared.ID, in catalog.ProductInput) error
	DeleteProduct(ctx context.Context, id shared.ID) error
	SetProductStatus(ctx context.Context, id shared.ID, status catalog.ProductStatus) error

	Categories(ctx context.Context) ([]catalog.Category, error)
	CreateCategory(ctx context.Context, in catalog.CategoryInput) error
	UpdateCategory(ctx context.Context, id shared.ID, in catalog.CategoryInput) error
	DeleteCategory(ctx context.Context, id shared.ID) error

	Orders(ctx context.Context, q admin.ListQuery) (apiclient.Paged[trade.Order], error)
	OrderStats(ctx context.Context) (admin.OrderStats, error)
	Order(ctx context.Context, id shared.ID) (trade.Order, error)
	SetOrderStatus(ctx context.Context, id shared.ID, status trade.OrderStatus) error
}

// Session exposes the signed-in user.
type Session interface {
	User() *identity.User
}

// Service is the admin panel. Every operation requires the admin role.
type Service struct {
	api       API
	session   Session
	confirmer notify.Confirmer
	notifier  notify.Notifier
	logger    *zap.Logger
}

// NewService creates an admin service. A nil confirmer declines every
// destructive action.
func NewService(api API, session Session, confirmer notify.Confirmer, notifier notify.Notifier, logger *zap.Logger) *Service {
	if confirmer == nil {
		confirmer = notify.AutoConfirm(false)
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:       api,
		session:   session,
		confirmer: confirmer,
		notifier:  notifier,
		logger:    logger.Named("admin"),
	}
}

// Dashboard loads the three stats endpoints concurrently
func (s *Service) Dashboard(ctx context.Context) (admin.Dashboard, error) {
	if err := s.authorize(); err != nil {
		return admin.Dashboard{}, err
	}

	var (
		users    admin.UserStats
		products admin.ProductStats
		orders   admin.OrderStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.api.UserStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.api.ProductStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.api.OrderStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("Failed to load dashboard stats", zap.Error(err))
		s.notifier.Error(notify.MsgStatsLoadFailed)
		return admin.Dashboard{}, err
	}
	return admin.NewDashboard(users, products, orders), nil
}

// Users lists accounts
func (s *Service) Users(ctx context.Context, q admin.ListQuery) (apiclient.Paged[identity.User], error) {
	if err := s.authorize(); err != nil {
		return apiclient.Paged[identity.User]{}, err
	}
	page, err := s.api.Users(ctx, q)
	if err != nil {
		s.logger.Warn("Failed to list users", zap.Error(err))
		s.notifier.Error(notify.MsgUsersLoadFailed)
		return apiclient.Paged[identity.User]{}, err
	}
	return page, nil
}

// User returns one account
func (s *Service) User(ctx context.Context, id shared.ID) (identity.User, error) {
	if err := s.authorize(); err != nil {
		return identity.User{}, err
	}
	user, err := s.api.User(ctx, id)
	if err != nil {
		s.notifier.Error(notify.MsgUsersLoadFailed)
		return identity.User{}, err
	}
	return user, nil
}

// UpdateUser edits an account's name, email or role
func (s *Service) UpdateUser(ctx context.Context, id shared.ID, in admin.UserUpdate) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := apiclient.Validator().Struct(in); err != nil {
		s.notifier.Error(notify.MsgFillRequired)
		return errors.Join(shared.ErrInvalidInput, err)
	}
	return s.run(ctx, "update_user", id, notify.MsgProfileFailed, func(ctx context.Context) error {
		return s.api.UpdateUser(ctx, id, in)
	}, notify.MsgUserUpdated)
}

// SetUserStatus activates or deactivates an account
func (s *Service) SetUserStatus(ctx context.Context, id shared.ID, status identity.UserStatus) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if status != identity.UserStatusActive && status != identity.UserStatusInactive {
		s.notifier.Error(notify.MsgUserStatusFailed)
		return fmt.Errorf("%w: user status %q", shared.ErrInvalidInput, status)
	}
	return s.run(ctx, "user_status", id, notify.MsgUserStatusFailed, func(ctx context.Context) error {
		return s.api.SetUserStatus(ctx, id, status)
	}, notify.MsgUserStatusOK, string(status))
}

// DeleteUser removes an account after confirmation. label names the user in
// the prompt.
func (s *Service) DeleteUser(ctx context.Context, id shared.ID, label string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if label == "" {
		label = id.String()
	}
	if err := s.confirm(notify.MsgConfirmDeleteUser, label); err != nil {
		return err
	}
	return s.run(ctx, "delete_user", id, notify.MsgUserDeleteFailed, func(ctx context.Context) error {
		return s.api.DeleteUser(ctx, id)
	}, notify.MsgUserDeleted)
}

// Products lists listings across sellers
func (s *Service) Products(ctx context.Context, q admin.ListQuery) (apiclient.Paged[catalog.Product], error) {
	if err := s.authorize(); err != nil {
		return apiclient.Paged[catalog.Product]{}, err
	}
	page, err := s.api.Products(ctx, q)
	if err != nil {
		s.logger.Warn("Failed to list products", zap.Error(err))
		s.notifier.Error(notify.MsgProductsLoadFailed)
		return apiclient.Paged[catalog.Product]{}, err
	}
	return page, nil
}

// Product returns one listing
func (s *Service) Product(ctx context.Context, id shared.ID) (catalog.Product, error) {
	if err := s.authorize(); err != nil {
		return catalog.Product{}, err
	}
	product, err := s.api.Product(ctx, id)
	if err != nil {
		s.notifier.Error(notify.MsgProductLoadFailed)
		return catalog.Product{}, err
	}
	return product, nil
}

// UpdateProduct replaces a listing's fields
func (s *Service) UpdateProduct(ctx context.Context, id shared.ID, in catalog.ProductInput) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := apiclient.Validator().Struct(in); err != nil {
		s.notifier.Error(notify.MsgFillRequired)
		return errors.Join(shared.ErrInvalidInput, err)
	}
	return s.run(ctx, "update_product", id, notify.MsgProductUpdateFailed, func(ctx context.Context) error {
		return s.api.UpdateProduct(ctx, id, in)
	}, notify.MsgProductUpdated)
}

// SetProductStatus activates or deactivates a listing
func (s *Service) SetProductStatus(ctx context.Context, id shared.ID, status catalog.ProductStatus) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if !status.IsValid() {
		s.notifier.Error(notify.MsgProductStatusFailed)
		return fmt.Errorf("%w: product status %q", shared.ErrInvalidInput, status)
	}
	return s.run(ctx, "product_status", id, notify.MsgProductStatusFailed, func(ctx context.Context) error {
		return s.api.SetProductStatus(ctx, id, status)
	}, notify.MsgProductStatusOK, string(status))
}

// DeleteProduct removes a listing after confirmation
func (s *Service) DeleteProduct(ctx context.Context, id shared.ID) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := s.confirm(notify.MsgConfirmDeleteProduct); err != nil {
		return err
	}
	return s.run(ctx, "delete_product", id, notify.MsgProductDeleteFailed, func(ctx context.Context) error {
		return s.api.DeleteProduct(ctx, id)
	}, notify.MsgProductDeleted)
}

// Categories lists every category with its product count
func (s *Service) Categories(ctx context.Context) ([]catalog.Category, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	categories, err := s.api.Categories(ctx)
	if err != nil {
		s.logger.Warn("Failed to list categories", zap.Error(err))
		s.notifier.Error(notify.MsgCategoriesLoadFailed)
		return nil, err
	}
	return categories, nil
}

// SaveCategory creates a category when id is zero and updates it otherwise
func (s *Service) SaveCategory(ctx context.Context, id shared.ID, in catalog.CategoryInput) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := apiclient.Validator().Struct(in); err != nil {
		s.notifier.Error(notify.MsgFillRequired)
		return errors.Join(shared.ErrInvalidInput, err)
	}
	if id.IsZero() {
		return s.run(ctx, "create_category", id, notify.MsgCategorySaveFailed, func(ctx context.Context) error {
			return s.api.CreateCategory(ctx, in)
		}, notify.MsgCategoryCreated)
	}
	return s.run(ctx, "update_category", id, notify.MsgCategorySaveFailed, func(ctx context.Context) error {
		return s.api.UpdateCategory(ctx, id, in)
	}, notify.MsgCategoryUpdated)
}

// DeleteCategory removes a category after confirmation. The server refuses
// with 400 while products still reference it.
func (s *Service) DeleteCategory(ctx context.Context, id shared.ID) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := s.confirm(notify.MsgConfirmDeleteCategory); err != nil {
		return err
	}

	err := s.api.DeleteCategory(ctx, id)
	var apiErr *apiclient.APIError
	switch {
	case err == nil:
		s.notifier.Success(notify.MsgCategoryDeleted)
		return nil
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest:
		s.notifier.Error(notify.MsgCategoryInUse)
	default:
		s.notifier.Error(notify.MsgCategoryDeleteFailed)
	}
	s.logger.Warn("Admin action failed", zap.String("action", "delete_category"), zap.String("id", id.String()), zap.Error(err))
	return err
}

// Orders lists every order
func (s *Service) Orders(ctx context.Context, q admin.ListQuery) (apiclient.Paged[trade.Order], error) {
	if err := s.authorize(); err != nil {
		return apiclient.Paged[trade.Order]{}, err
	}
	page, err := s.api.Orders(ctx, q)
	if err != nil {
		s.logger.Warn("Failed to list orders", zap.Error(err))
		s.notifier.Error(notify.MsgOrdersLoadFailed)
		return apiclient.Paged[trade.Order]{}, err
	}
	return page, nil
}

// Order returns one order with its items
func (s *Service) Order(ctx context.Context, id shared.ID) (trade.Order, error) {
	if err := s.authorize(); err != nil {
		return trade.Order{}, err
	}
	order, err := s.api.Order(ctx, id)
	if err != nil {
		s.notifier.Error(notify.MsgOrderLoadFailed)
		return trade.Order{}, err
	}
	return order, nil
}

// SetOrderStatus forces an order's status. Admins are not bound by the
// buyer and seller transition rules.
func (s *Service) SetOrderStatus(ctx context.Context, id shared.ID, status trade.OrderStatus) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if !status.IsValid() {
		s.notifier.Error(notify.MsgTransitionInvalid)
		return fmt.Errorf("%w: order status %q", shared.ErrInvalidInput, status)
	}
	return s.run(ctx, "order_status", id, notify.MsgOrderStatusFailed, func(ctx context.Context) error {
		return s.api.SetOrderStatus(ctx, id, status)
	}, notify.MsgAdminOrderStatusOK, id.String(), status.String())
}

func (s *Service) authorize() error {
	user := s.session.User()
	if user == nil {
		s.notifier.Error(notify.MsgLoginRequired)
		return apiclient.ErrNotAuthenticated
	}
	if !user.HasRole(identity.RoleAdmin) {
		s.notifier.Error(notify.MsgAccessDenied)
		return shared.ErrForbidden
	}
	return nil
}

func (s *Service) confirm(prompt string, args ...any) error {
	if s.confirmer.Confirm(prompt, args...) {
		return nil
	}
	s.notifier.Error(notify.MsgActionCancelled)
	return shared.ErrCancelled
}

// run performs one mutation and notifies its outcome. Server-supplied
// messages replace failMsg.
func (s *Service) run(ctx context.Context, action string, id shared.ID, failMsg string, fn func(context.Context) error, okMsg string, okArgs ...any) error {
	if err := fn(ctx); err != nil {
		s.logger.Warn("Admin action failed",
			zap.String("action", action),
			zap.String("id", id.String()),
			zap.Error(err),
		)
		s.notifier.Error(apiclient.Message(err, failMsg))
		return err
	}
	s.logger.Info("Admin action", zap.String("action", action), zap.String("id", id.String()))
	s.notifier.Success(okMsg, okArgs...)
	return nil
}
