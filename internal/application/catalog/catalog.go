// Package catalog serves product browsing, product detail with reviews and
// the seller's own listings.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TheRipper284/frontend/internal/domain/catalog"
	"github.com/TheRipper284/frontend/internal/domain/identity"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
)

// ProductAPI is the remote side of the catalog.
type ProductAPI interface {
	ListProducts(ctx context.Context, q catalog.ProductQuery) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id shared.ID) (catalog.Product, error)
	RecordView(ctx context.Context, id shared.ID) error
	SellerProducts(ctx context.Context) ([]catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	CreateProduct(ctx context.Context, in catalog.ProductInput, image *apiclient.FilePart) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id shared.ID, in catalog.ProductInput, image *apiclient.FilePart) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id shared.ID) error
}

// ReviewAPI is the remote side of reviews.
type ReviewAPI interface {
	ListForProduct(ctx context.Context, product shared.ID) ([]catalog.Review, error)
	CanReview(ctx context.Context, product shared.ID) (bool, error)
	Create(ctx context.Context, in catalog.ReviewInput) (shared.ID, error)
}

// Session exposes the signed-in user.
type Session interface {
	User() *identity.User
}

// Deps are the collaborators of a Service. Products, Reviews and Session
// are required.
type Deps struct {
	Products  ProductAPI
	Reviews   ReviewAPI
	Session   Session
	Confirmer notify.Confirmer
	Notifier  notify.Notifier
	Logger    *zap.Logger
	Now       func() time.Time
}

// Detail is everything the product page shows.
type Detail struct {
	Product   catalog.Product  `json:"product" yaml:"product"`
	Reviews   []catalog.Review `json:"reviews" yaml:"reviews"`
	CanReview bool             `json:"canReview" yaml:"canReview"`
}

// Service is the catalog service.
type Service struct {
	products  ProductAPI
	reviews   ReviewAPI
	session   Session
	confirmer notify.Confirmer
	notifier  notify.Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a catalog service
func NewService(deps Deps) *Service {
	if deps.Confirmer == nil {
		deps.Confirmer = notify.AutoConfirm(false)
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		products:  deps.Products,
		reviews:   deps.Reviews,
		session:   deps.Session,
		confirmer: deps.Confirmer,
		notifier:  deps.Notifier,
		logger:    deps.Logger.Named("catalog"),
		now:       deps.Now,
	}
}

// Browse lists products matching q
func (s *Service) Browse(ctx context.Context, q catalog.ProductQuery) ([]catalog.Product, error) {
	products, err := s.products.ListProducts(ctx, q)
	if err != nil {
		s.logger.Warn("Failed to list products", zap.Error(err))
		s.notifier.Error(notify.MsgProductsLoadFailed)
		return nil, err
	}
	return products, nil
}

// Categories lists every category
func (s *Service) Categories(ctx context.Context) ([]catalog.Category, error) {
	categories, err := s.products.ListCategories(ctx)
	if err != nil {
		s.logger.Warn("Failed to list categories", zap.Error(err))
		s.notifier.Error(notify.MsgCategoriesLoadFailed)
		return nil, err
	}
	return categories, nil
}

// Detail loads a product page. The view counter, the reviews and the review
// eligibility are best-effort; only the product itself must load.
func (s *Service) Detail(ctx context.Context, id shared.ID) (Detail, error) {
	if err := s.products.RecordView(ctx, id); err != nil {
		s.logger.Debug("Failed to record product view", zap.String("product_id", id.String()), zap.Error(err))
	}

	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to load product", zap.String("product_id", id.String()), zap.Error(err))
		s.notifier.Error(notify.MsgProductLoadFailed)
		return Detail{}, err
	}

	d := Detail{Product: product, Reviews: []catalog.Review{}}
	if reviews, err := s.reviews.ListForProduct(ctx, id); err != nil {
		s.logger.Debug("Failed to load reviews", zap.String("product_id", id.String()), zap.Error(err))
	} else {
		d.Reviews = reviews
	}

	if s.session.User() != nil {
		ok, err := s.reviews.CanReview(ctx, id)
		if err != nil {
			s.logger.Debug("Failed to check review eligibility", zap.String("product_id", id.String()), zap.Error(err))
		}
		d.CanReview = err == nil && ok
	}
	return d, nil
}

// Product returns one product without counting a view
func (s *Service) Product(ctx context.Context, id shared.ID) (catalog.Product, error) {
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		s.logger.Warn("Failed to load product", zap.String("product_id", id.String()), zap.Error(err))
		s.notifier.Error(notify.MsgProductLoadFailed)
		return catalog.Product{}, err
	}
	return product, nil
}

// Reviews lists the reviews of a product
func (s *Service) Reviews(ctx context.Context, product shared.ID) ([]catalog.Review, error) {
	reviews, err := s.reviews.ListForProduct(ctx, product)
	if err != nil {
		s.logger.Warn("Failed to load reviews", zap.String("product_id", product.String()), zap.Error(err))
		s.notifier.Error(notify.MsgProductLoadFailed)
		return nil, err
	}
	return reviews, nil
}

// AddReview posts a review. The rating must be 1..5 and the trimmed comment
// non-empty; both are checked before anything is sent.
func (s *Service) AddReview(ctx context.Context, product shared.ID, rating int, comment string) (catalog.Review, error) {
	user := s.session.User()
	if user == nil {
		s.notifier.Error(notify.MsgLoginRequired)
		return catalog.Review{}, apiclient.ErrNotAuthenticated
	}
	if rating < 1 || rating > 5 {
		s.notifier.Error(notify.MsgRatingRequired)
		return catalog.Review{}, shared.ErrInvalidInput
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		s.notifier.Error(notify.MsgCommentRequired)
		return catalog.Review{}, shared.ErrInvalidInput
	}

	in := catalog.ReviewInput{ProductID: product, Rating: rating, Comment: comment}
	id, err := s.reviews.Create(ctx, in)
	if err != nil {
		s.logger.Warn("Failed to create review", zap.String("product_id", product.String()), zap.Error(err))
		s.notifier.Error(apiclient.Message(err, notify.MsgReviewFailed))
		return catalog.Review{}, err
	}

	now := s.now()
	s.notifier.Success(notify.MsgReviewOK)
	return catalog.Review{
		ID:           id,
		ProductID:    product,
		Rating:       rating,
		Comment:      comment,
		ReviewerName: user.Name,
		CreatedAt:    &now,
	}, nil
}

// MyProducts lists the signed-in seller's products
func (s *Service) MyProducts(ctx context.Context) ([]catalog.Product, error) {
	if _, err := s.seller(); err != nil {
		return nil, err
	}
	products, err := s.products.SellerProducts(ctx)
	if err != nil {
		s.logger.Warn("Failed to list seller products", zap.Error(err))
		s.notifier.Error(notify.MsgProductsLoadFailed)
		return nil, err
	}
	return products, nil
}

// CreateProduct publishes a new listing. image may be nil.
func (s *Service) CreateProduct(ctx context.Context, in catalog.ProductInput, image *apiclient.FilePart) (catalog.Product, error) {
	if _, err := s.seller(); err != nil {
		return catalog.Product{}, err
	}
	if err := s.checkInput(in); err != nil {
		return catalog.Product{}, err
	}

	product, err := s.products.CreateProduct(ctx, in, image)
	if err != nil {
		s.logger.Warn("Failed to create product", zap.Error(err))
		s.notifier.Error(apiclient.Message(err, notify.MsgProductCreateFailed))
		return catalog.Product{}, err
	}
	s.notifier.Success(notify.MsgProductCreated)
	return product, nil
}

// UpdateProduct replaces a listing the caller owns. Admins may edit any.
func (s *Service) UpdateProduct(ctx context.Context, id shared.ID, in catalog.ProductInput, image *apiclient.FilePart) (catalog.Product, error) {
	if err := s.owned(ctx, id); err != nil {
		return catalog.Product{}, err
	}
	if err := s.checkInput(in); err != nil {
		return catalog.Product{}, err
	}

	product, err := s.products.UpdateProduct(ctx, id, in, image)
	if err != nil {
		s.logger.Warn("Failed to update product", zap.String("product_id", id.String()), zap.Error(err))
		s.notifier.Error(apiclient.Message(err, notify.MsgProductUpdateFailed))
		return catalog.Product{}, err
	}
	s.notifier.Success(notify.MsgProductUpdated)
	return product, nil
}

// DeleteProduct removes a listing the caller owns, after confirmation.
func (s *Service) DeleteProduct(ctx context.Context, id shared.ID) error {
	if err := s.owned(ctx, id); err != nil {
		return err
	}
	if !s.confirmer.Confirm(notify.MsgConfirmDeleteProduct) {
		s.notifier.Error(notify.MsgActionCancelled)
		return shared.ErrCancelled
	}

	if err := s.products.DeleteProduct(ctx, id); err != nil {
		s.logger.Warn("Failed to delete product", zap.String("product_id", id.String()), zap.Error(err))
		s.notifier.Error(notify.MsgProductDeleteFailed)
		return err
	}
	s.notifier.Success(notify.MsgProductDeleted)
	return nil
}

func (s *Service) seller() (*identity.User, error) {
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

// owned checks the caller may edit product id.
func (s *Service) owned(ctx context.Context, id shared.ID) error {
	user := s.session.User()
	if user == nil {
		s.notifier.Error(notify.MsgLoginRequired)
		return apiclient.ErrNotAuthenticated
	}
	if user.HasRole(identity.RoleAdmin) {
		return nil
	}
	if !user.HasRole(identity.RoleSeller) {
		s.notifier.Error(notify.MsgAccessDenied)
		return shared.ErrForbidden
	}

	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		s.notifier.Error(notify.MsgProductLoadFailed)
		return err
	}
	if product.SellerID != user.ID {
		s.notifier.Error(notify.MsgProductNotOwned)
		return shared.ErrForbidden
	}
	return nil
}

func (s *Service) checkInput(in catalog.ProductInput) error {
	err := apiclient.Validator().Struct(in)
	if err == nil && !in.Price.IsPositive() {
		err = errors.New("price must be positive")
	}
	if err != nil {
		s.notifier.Error(notify.MsgFillRequired)
		return errors.Join(shared.ErrInvalidInput, err)
	}
	return nil
}
