// Package cart implements the buyer's cart store: a local-first list of line
// items persisted under "cart-storage" and mirrored to the server on a
// best-effort basis while a session exists.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TheRipper284/frontend/internal/domain/cart"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/apiclient"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
	"github.com/TheRipper284/frontend/internal/infrastructure/storage"
	"github.com/TheRipper284/frontend/internal/infrastructure/telemetry"
)

// Mirror operations, used as the op label of storefront_cart_mirror_total.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
	OpClear  = "clear"
	OpLoad   = "load"
	OpSync   = "sync"
)

// Mirror is the server-side copy of the cart.
type Mirror interface {
	List(ctx context.Context) (cart.Lines, error)
	AddItem(ctx context.Context, product shared.ID, quantity int) error
	UpdateItem(ctx context.Context, product shared.ID, quantity int) error
	RemoveItem(ctx context.Context, product shared.ID) error
	Clear(ctx context.Context) error
}

// Deps are the collaborators of a Store. Only Storage is required; a nil
// Mirror or Tokens disables mirroring.
type Deps struct {
	Storage  storage.Store
	Tokens   apiclient.TokenSource
	Mirror   Mirror
	Notifier notify.Notifier
	Logger   *zap.Logger
	Metrics  *telemetry.Metrics
}

// Snapshot is the observable state of the cart.
type Snapshot struct {
	Items   cart.Lines
	Total   decimal.Decimal
	Count   int
	Loading bool
}

// persisted is the on-disk shape, kept compatible with the web client's
// persisted store.
type persisted struct {
	State struct {
		Items     []storedLine `json:"items"`
		IsLoading bool         `json:"isLoading"`
	} `json:"state"`
	Version int `json:"version"`
}

// storedLine is a line item whose price is written as a JSON number, the
// way the web client stores it. Quoted prices are still read.
type storedLine struct {
	cart.LineItem
	Price storedPrice `json:"price"`
}

func storeLine(li cart.LineItem) storedLine {
	return storedLine{LineItem: li, Price: storedPrice{li.Price}}
}

func (l storedLine) line() cart.LineItem {
	li := l.LineItem
	li.Price = l.Price.Decimal
	return li
}

type storedPrice struct{ decimal.Decimal }

func (p storedPrice) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// Store is the cart. It is safe for concurrent use. Local mutations always
// succeed; mirror calls run after the local change, outside the lock, and
// their failures are logged and counted but never returned or rolled back.
// Mirror calls from concurrent mutations are not sequenced.
type Store struct {
	storage   storage.Store
	tokens    apiclient.TokenSource
	mirror    Mirror
	notifier  notify.Notifier
	metrics   *telemetry.Metrics
	logger    *zap.Logger
	mirrorLog *zap.Logger

	mu      sync.Mutex
	items   cart.Lines
	loading bool

	subMu     sync.Mutex
	listeners map[uint64]func(Snapshot)
	nextSub   uint64
}

// NewStore creates a store and restores the last persisted snapshot.
func NewStore(ctx context.Context, deps Deps) *Store {
	if deps.Storage == nil {
		deps.Storage = storage.NewMemoryStore()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Store{
		storage:   deps.Storage,
		tokens:    deps.Tokens,
		mirror:    deps.Mirror,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    deps.Logger.Named("cart"),
		mirrorLog: deps.Logger.Named("cart.mirror"),
		items:     cart.Lines{},
		listeners: make(map[uint64]func(Snapshot)),
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	raw, ok, err := s.storage.Get(ctx, storage.KeyCart)
	if err != nil {
		s.logger.Warn("Failed to read cart snapshot", zap.Error(err))
		return
	}
	if !ok || raw == "" {
		return
	}

	var p persisted
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Warn("Discarding corrupt cart snapshot", zap.Error(err))
		if err := s.storage.Remove(ctx, storage.KeyCart); err != nil {
			s.logger.Warn("Failed to remove corrupt cart snapshot", zap.Error(err))
		}
		return
	}

	items := make(cart.Lines, 0, len(p.State.Items))
	for _, sl := range p.State.Items {
		li := sl.line()
		if err := apiclient.Validator().Struct(li); err != nil {
			s.logger.Warn("Dropping invalid cart item",
				zap.String("product_id", li.ID.String()),
				zap.Error(err),
			)
			continue
		}
		items = append(items, li)
	}
	s.items = items
	s.logger.Debug("Cart restored", zap.Int("items", len(items)))
}

// AddItem adds quantity units of p, merging with an existing line. A
// non-positive quantity counts as 1.
func (s *Store) AddItem(ctx context.Context, p cart.Product, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	next, existed := s.items.Add(p, quantity)
	snap := s.commitLocked(ctx, next)
	s.mu.Unlock()

	if existed {
		s.notifier.Success(notify.MsgCartUpdated)
	} else {
		s.notifier.Success(notify.MsgCartAdded)
	}
	s.publish(snap)

	s.mirrored(ctx, OpAdd, func(ctx context.Context) error {
		return s.mirror.AddItem(ctx, p.ID, quantity)
	})
}

// RemoveItem drops the line for id. Missing ids are not an error.
func (s *Store) RemoveItem(ctx context.Context, id shared.ID) {
	s.mu.Lock()
	snap := s.commitLocked(ctx, s.items.Remove(id))
	s.mu.Unlock()

	s.notifier.Success(notify.MsgCartRemoved)
	s.publish(snap)

	s.mirrored(ctx, OpRemove, func(ctx context.Context) error {
		return s.mirror.RemoveItem(ctx, id)
	})
}

// UpdateQuantity overwrites the quantity of id. A quantity <= 0 removes it.
func (s *Store) UpdateQuantity(ctx context.Context, id shared.ID, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, id)
		return
	}

	s.mu.Lock()
	snap := s.commitLocked(ctx, s.items.SetQuantity(id, quantity))
	s.mu.Unlock()

	s.publish(snap)

	s.mirrored(ctx, OpUpdate, func(ctx context.Context) error {
		return s.mirror.UpdateItem(ctx, id, quantity)
	})
}

// ClearCart empties the cart.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	snap := s.commitLocked(ctx, cart.Lines{})
	s.mu.Unlock()

	s.publish(snap)

	s.mirrored(ctx, OpClear, func(ctx context.Context) error {
		return s.mirror.Clear(ctx)
	})
}

// LoadCart replaces the local items with the server's cart. Without a
// session it does nothing; on failure local state is kept.
func (s *Store) LoadCart(ctx context.Context) {
	if !s.sessionActive(ctx) {
		s.metrics.ObserveMirror(OpLoad, telemetry.MirrorSkipped)
		return
	}

	s.publish(s.setLoading(true))
	defer func() { s.publish(s.setLoading(false)) }()

	lines, err := s.mirror.List(ctx)
	if err != nil {
		s.mirrorLog.Warn("Failed to load cart from server", zap.Error(err))
		s.metrics.ObserveMirror(OpLoad, telemetry.MirrorFailed)
		return
	}

	s.mu.Lock()
	s.commitLocked(ctx, lines)
	s.mu.Unlock()
	s.metrics.ObserveMirror(OpLoad, telemetry.MirrorOK)
}

// SyncWithServer clears the server cart and re-adds every local item in
// order. It stops at the first failure, leaving the server copy partial.
func (s *Store) SyncWithServer(ctx context.Context) {
	if !s.sessionActive(ctx) {
		s.metrics.ObserveMirror(OpSync, telemetry.MirrorSkipped)
		return
	}

	items := s.Items()
	if err := s.mirror.Clear(ctx); err != nil {
		s.syncFailed(err, 0, len(items))
		return
	}
	for i, li := range items {
		if err := s.mirror.AddItem(ctx, li.ID, li.Quantity); err != nil {
			s.syncFailed(err, i, len(items))
			return
		}
	}
	s.metrics.ObserveMirror(OpSync, telemetry.MirrorOK)
}

func (s *Store) syncFailed(err error, synced, total int) {
	s.mirrorLog.Warn("Cart sync stopped",
		zap.Int("synced", synced),
		zap.Int("total", total),
		zap.Error(err),
	)
	s.metrics.ObserveMirror(OpSync, telemetry.MirrorFailed)
}

// Items returns a copy of the current line items.
func (s *Store) Items() cart.Lines {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(cart.Lines{}, s.items...)
}

// Total is the sum of price * quantity, computed on each call.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Total()
}

// ItemCount is the sum of quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Count()
}

// IsLoading reports whether LoadCart is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to run after every change. The returned function
// removes it and may be called more than once.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.listeners, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// commitLocked replaces the items and persists them. mu must be held.
func (s *Store) commitLocked(ctx context.Context, next cart.Lines) Snapshot {
	s.items = next
	if err := s.persistLocked(ctx); err != nil {
		s.logger.Error("Failed to persist cart", zap.Error(err))
	}
	return s.snapshotLocked()
}

func (s *Store) persistLocked(ctx context.Context) error {
	var p persisted
	p.State.Items = make([]storedLine, 0, len(s.items))
	for _, li := range s.items {
		p.State.Items = append(p.State.Items, storeLine(li))
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, storage.KeyCart, string(raw))
}

func (s *Store) setLoading(v bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:   append(cart.Lines{}, s.items...),
		Total:   s.items.Total(),
		Count:   s.items.Count(),
		Loading: s.loading,
	}
}

// sessionActive reports whether mirror calls should be made.
func (s *Store) sessionActive(ctx context.Context) bool {
	if s.mirror == nil || s.tokens == nil {
		return false
	}
	token, err := s.tokens.Token(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.mirrorLog.Debug("Cannot read session token", zap.Error(err))
		}
		return false
	}
	return token != ""
}

// mirrored runs fn when a session exists and records its outcome.
func (s *Store) mirrored(ctx context.Context, op string, fn func(context.Context) error) {
	if !s.sessionActive(ctx) {
		s.metrics.ObserveMirror(op, telemetry.MirrorSkipped)
		return
	}
	if err := fn(ctx); err != nil {
		s.mirrorLog.Warn("Cart mirror failed", zap.String("op", op), zap.Error(err))
		s.metrics.ObserveMirror(op, telemetry.MirrorFailed)
		return
	}
	s.metrics.ObserveMirror(op, telemetry.MirrorOK)
}
