package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TheRipper284/frontend/internal/domain/cart"
	"github.com/TheRipper284/frontend/internal/domain/shared"
	"github.com/TheRipper284/frontend/internal/infrastructure/notify"
	"github.com/TheRipper284/frontend/internal/infrastructure/storage"
	"github.com/TheRipper284/frontend/internal/infrastructure/telemetry"
)

// MockMirror is a mock implementation of Mirror
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) List(ctx context.Context) (cart.Lines, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cart.Lines), args.Error(1)
}

func (m *MockMirror) AddItem(ctx context.Context, product shared.ID, quantity int) error {
	return m.Called(ctx, product, quantity).Error(0)
}

func (m *MockMirror) UpdateItem(ctx context.Context, product shared.ID, quantity int) error {
	return m.Called(ctx, product, quantity).Error(0)
}

func (m *MockMirror) RemoveItem(ctx context.Context, product shared.ID) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockMirror) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// session is a switchable token source
type session struct {
	token atomic.Value
}

func newSession(token string) *session {
	s := &session{}
	s.token.Store(token)
	return s
}

func (s *session) Token(context.Context) (string, error) { return s.token.Load().(string), nil }

type fixture struct {
	store    *Store
	storage  *storage.MemoryStore
	mirror   *MockMirror
	notifier *notify.Recorder
	metrics  *telemetry.Metrics
	logs     *observer.ObservedLogs
}

func newFixture(t *testing.T, token string) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		storage:  storage.NewMemoryStore(),
		mirror:   &MockMirror{},
		notifier: &notify.Recorder{},
		metrics:  telemetry.NewMetrics(),
		logs:     logs,
	}
	f.store = NewStore(context.Background(), Deps{
		Storage:  f.storage,
		Tokens:   newSession(token),
		Mirror:   f.mirror,
		Notifier: f.notifier,
		Logger:   zap.New(core),
		Metrics:  f.metrics,
	})
	return f
}

func (f *fixture) persisted(t *testing.T) persisted {
	t.Helper()
	raw, ok, err := f.storage.Get(context.Background(), storage.KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	var p persisted
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func (f *fixture) mirrorCount(t *testing.T, op, result string, want int) {
	t.Helper()
	got := testutil.ToFloat64(f.metrics.MirrorCounter().WithLabelValues(op, result))
	assert.Equal(t, float64(want), got, "%s/%s", op, result)
}

func fakeProduct(f *gofakeit.Faker) cart.Product {
	return cart.Product{
		ID:         shared.ID(f.UUID()),
		Title:      f.ProductName(),
		Price:      decimal.NewFromFloat(f.Price(1, 500)).Round(2),
		ImageURL:   f.URL(),
		SellerName: f.Company(),
	}
}

var errOffline = errors.New("dial tcp: connection refused")

func TestAddItemMergesQuantities(t *testing.T) {
	faker := gofakeit.New(42)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		fx := newFixture(t, "")
		p := fakeProduct(faker)
		q1, q2 := faker.Number(1, 50), faker.Number(1, 50)

		fx.store.AddItem(ctx, p, q1)
		fx.store.AddItem(ctx, p, q2)

		items := fx.store.Items()
		require.Len(t, items, 1)
		assert.Equal(t, p.ID, items[0].ID)
		assert.Equal(t, q1+q2, items[0].Quantity)
		assert.Equal(t, []string{notify.MsgCartAdded, notify.MsgCartUpdated}, fx.notifier.Keys())
	}
}

func TestAddItemNonPositiveQuantityCountsAsOne(t *testing.T) {
	fx := newFixture(t, "")
	p := fakeProduct(gofakeit.New(1))

	fx.store.AddItem(context.Background(), p, 0)
	fx.store.AddItem(context.Background(), p, -3)

	assert.Equal(t, 2, fx.store.ItemCount())
}

func TestUpdateQuantityToZeroOrBelowRemoves(t *testing.T) {
	for _, q := range []int{0, -1} {
		fx := newFixture(t, "")
		ctx := context.Background()
		p := fakeProduct(gofakeit.New(7))
		other := fakeProduct(gofakeit.New(8))
		fx.store.AddItem(ctx, p, 3)
		fx.store.AddItem(ctx, other, 1)

		fx.store.UpdateQuantity(ctx, p.ID, q)

		items := fx.store.Items()
		require.Len(t, items, 1, "quantity %d", q)
		assert.Equal(t, other.ID, items[0].ID)
		_, found := items.Find(p.ID)
		assert.False(t, found)
	}
}

func TestUpdateQuantityOverwrites(t *testing.T) {
	fx := newFixture(t, "")
	ctx := context.Background()
	p := fakeProduct(gofakeit.New(3))
	fx.store.AddItem(ctx, p, 2)

	fx.store.UpdateQuantity(ctx, p.ID, 9)

	assert.Equal(t, 9, fx.store.ItemCount())
	assert.Equal(t, 9, fx.persisted(t).State.Items[0].Quantity)
}

func TestTotalIsRecomputedAfterEveryMutation(t *testing.T) {
	faker := gofakeit.New(99)
	fx := newFixture(t, "")
	ctx := context.Background()

	var products []cart.Product
	for i := 0; i < 10; i++ {
		p := fakeProduct(faker)
		products = append(products, p)
		fx.store.AddItem(ctx, p, faker.Number(1, 5))
		assertTotal(t, fx.store)
	}
	for _, p := range products[:5] {
		fx.store.UpdateQuantity(ctx, p.ID, faker.Number(1, 5))
		assertTotal(t, fx.store)
	}
	for _, p := range products[5:8] {
		fx.store.RemoveItem(ctx, p.ID)
		assertTotal(t, fx.store)
	}
}

func assertTotal(t *testing.T, s *Store) {
	t.Helper()
	want := decimal.Zero
	for _, li := range s.Items() {
		want = want.Add(li.Price.Mul(decimal.NewFromInt(int64(li.Quantity))))
	}
	assert.True(t, want.Equal(s.Total()), "total %s, want %s", s.Total(), want)
}

func TestClearCartZeroesCount(t *testing.T) {
	faker := gofakeit.New(5)
	fx := newFixture(t, "")
	ctx := context.Background()
	for i := 0; i < faker.Number(0, 8); i++ {
		fx.store.AddItem(ctx, fakeProduct(faker), faker.Number(1, 10))
	}

	fx.store.ClearCart(ctx)

	assert.Equal(t, 0, fx.store.ItemCount())
	assert.Empty(t, fx.persisted(t).State.Items)
}

func TestTotalsScenario(t *testing.T) {
	fx := newFixture(t, "")
	ctx := context.Background()
	fx.store.AddItem(ctx, cart.Product{ID: "1", Title: "A", Price: decimal.RequireFromString("10.00")}, 2)
	fx.store.AddItem(ctx, cart.Product{ID: "2", Title: "B", Price: decimal.RequireFromString("5.50")}, 1)

	assert.Equal(t, "25.50", fx.store.Total().StringFixed(2))
	assert.Equal(t, 3, fx.store.ItemCount())
}

func TestRemoveMissingItemLeavesListUnchanged(t *testing.T) {
	fx := newFixture(t, "")
	ctx := context.Background()
	p := fakeProduct(gofakeit.New(11))
	fx.store.AddItem(ctx, p, 2)
	before := fx.store.Items()

	fx.store.RemoveItem(ctx, "does-not-exist")

	assert.Equal(t, before, fx.store.Items())
}

func TestMirrorFailureKeepsLocalState(t *testing.T) {
	fx := newFixture(t, "tok")
	ctx := context.Background()
	p := fakeProduct(gofakeit.New(12))
	fx.mirror.On("AddItem", mock.Anything, p.ID, 2).Return(errOffline)

	fx.store.AddItem(ctx, p, 2)

	items := fx.store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, fx.persisted(t).State.Items[0].Quantity)
	assert.Equal(t, 1, fx.logs.FilterLoggerName("cart.mirror").FilterMessage("Cart mirror failed").Len())
	fx.mirrorCount(t, OpAdd, telemetry.MirrorFailed, 1)
	fx.mirror.AssertExpectations(t)
}

func TestMirrorCalls(t *testing.T) {
	fx := newFixture(t, "tok")
	ctx := context.Background()
	p := fakeProduct(gofakeit.New(13))
	fx.mirror.On("AddItem", mock.Anything, p.ID, 1).Return(nil).Once()
	fx.mirror.On("UpdateItem", mock.Anything, p.ID, 4).Return(nil).Once()
	fx.mirror.On("RemoveItem", mock.Anything, p.ID).Return(nil).Once()
	fx.mirror.On("Clear", mock.Anything).Return(nil).Once()

	fx.store.AddItem(ctx, p, 1)
	fx.store.UpdateQuantity(ctx, p.ID, 4)
	fx.store.RemoveItem(ctx, p.ID)
	fx.store.ClearCart(ctx)

	fx.mirror.AssertExpectations(t)
	fx.mirrorCount(t, OpUpdate, telemetry.MirrorOK, 1)
}

func TestNoMirrorWithoutSession(t *testing.T) {
	fx := newFixture(t, "")
	ctx := context.Background()
	p := fakeProduct(gofakeit.New(14))

	fx.store.AddItem(ctx, p, 1)
	fx.store.UpdateQuantity(ctx, p.ID, 3)
	fx.store.ClearCart(ctx)
	fx.store.LoadCart(ctx)
	fx.store.SyncWithServer(ctx)

	fx.mirror.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
	fx.mirror.AssertNotCalled(t, "Clear", mock.Anything)
	fx.mirror.AssertNotCalled(t, "List", mock.Anything)
	fx.mirrorCount(t, OpAdd, telemetry.MirrorSkipped, 1)
}

func TestLoadCartReplacesLocalItems(t *testing.T) {
	fx := newFixture(t, "tok")
	ctx := context.Background()
	local := fakeProduct(gofakeit.New(15))
	fx.mirror.On("AddItem", mock.Anything, local.ID, 1).Return(nil)
	fx.store.AddItem(ctx, local, 1)

	server := cart.Lines{{ID: "9", Title: "Mesa", Price: decimal.NewFromInt(1500), Quantity: 2}}
	fx.mirror.On("List", mock.Anything).Return(server, nil)

	var seen []bool
	unsubscribe := fx.store.Subscribe(func(s Snapshot) { seen = append(seen, s.Loading) })
	defer unsubscribe()

	fx.store.LoadCart(ctx)

	assert.Equal(t, server, fx.store.Items())
	assert.Equal(t, "9", fx.persisted(t).State.Items[0].ID.String())
	assert.Equal(t, []bool{true, false}, seen)
	assert.False(t, fx.store.IsLoading())
}

func TestLoadCartFailureKeepsLocalItems(t *testing.T) {
	fx := newFixture(t, "tok")
	ctx := context.Background()
	local := fakeProduct(gofakeit.New(16))
	fx.mirror.On("AddItem", mock.Anything, local.ID, 1).Return(nil)
	fx.store.AddItem(ctx, local, 1)
	fx.mirror.On("List", mock.Anything).Return(nil, errOffline)

	fx.store.LoadCart(ctx)

	require.Len(t, fx.store.Items(), 1)
	assert.Equal(t, local.ID, fx.store.Items()[0].ID)
	assert.False(t, fx.store.IsLoading())
	fx.mirrorCount(t, OpLoad, telemetry.MirrorFailed, 1)
}

func TestSyncWithServer(t *testing.T) {
	t.Run("clears then re-adds in order", func(t *testing.T) {
		fx := newFixture(t, "")
		ctx := context.Background()
		a := cart.Product{ID: "a", Price: decimal.NewFromInt(1)}
		b := cart.Product{ID: "b", Price: decimal.NewFromInt(2)}
		fx.store.AddItem(ctx, a, 2)
		fx.store.AddItem(ctx, b, 1)

		var order []string
		fx.mirror.On("Clear", mock.Anything).Return(nil).Run(func(mock.Arguments) { order = append(order, "clear") })
		fx.mirror.On("AddItem", mock.Anything, mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			order = append(order, args.Get(1).(shared.ID).String())
		})
		fx.store.tokens = newSession("tok")

		fx.store.SyncWithServer(ctx)

		assert.Equal(t, []string{"clear", "a", "b"}, order)
		fx.mirror.AssertCalled(t, "AddItem", mock.Anything, shared.ID("a"), 2)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		fx := newFixture(t, "")
		ctx := context.Background()
		for _, id := range []shared.ID{"a", "b", "c"} {
			fx.store.AddItem(ctx, cart.Product{ID: id, Price: decimal.NewFromInt(1)}, 1)
		}
		fx.mirror.On("Clear", mock.Anything).Return(nil)
		fx.mirror.On("AddItem", mock.Anything, shared.ID("a"), 1).Return(nil)
		fx.mirror.On("AddItem", mock.Anything, shared.ID("b"), 1).Return(errOffline)
		fx.store.tokens = newSession("tok")

		fx.store.SyncWithServer(ctx)

		fx.mirror.AssertNotCalled(t, "AddItem", mock.Anything, shared.ID("c"), 1)
		assert.Len(t, fx.store.Items(), 3)
		entry := fx.logs.FilterMessage("Cart sync stopped").All()
		require.Len(t, entry, 1)
		assert.Equal(t, int64(1), entry[0].ContextMap()["synced"])
	})
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the persisted snapshot", func(t *testing.T) {
		mem := storage.NewMemoryStore()
		raw := `{"state":{"items":[{"id":1,"title":"Silla","price":450,"image_url":"/uploads/s.png","quantity":2}],"isLoading":false},"version":0}`
		require.NoError(t, mem.Set(ctx, storage.KeyCart, raw))

		s := NewStore(ctx, Deps{Storage: mem})

		items := s.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "1", items[0].ID.String())
		assert.Equal(t, "900.00", s.Total().StringFixed(2))
	})

	t.Run("drops invalid items", func(t *testing.T) {
		mem := storage.NewMemoryStore()
		raw := `{"state":{"items":[{"id":"1","price":"1","quantity":0},{"id":"2","price":"3","quantity":1}]},"version":0}`
		require.NoError(t, mem.Set(ctx, storage.KeyCart, raw))

		s := NewStore(ctx, Deps{Storage: mem})

		require.Len(t, s.Items(), 1)
		assert.Equal(t, "2", s.Items()[0].ID.String())
	})

	t.Run("resets a corrupt snapshot", func(t *testing.T) {
		mem := storage.NewMemoryStore()
		require.NoError(t, mem.Set(ctx, storage.KeyCart, "{not json"))
		core, logs := observer.New(zapcore.WarnLevel)

		s := NewStore(ctx, Deps{Storage: mem, Logger: zap.New(core)})

		assert.Empty(t, s.Items())
		assert.Equal(t, 1, logs.FilterMessageSnippet("corrupt").Len())
		_, ok, err := mem.Get(ctx, storage.KeyCart)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("writes the web client's layout", func(t *testing.T) {
		fx := newFixture(t, "")
		fx.store.AddItem(ctx, cart.Product{ID: "5", Title: "Taza", Price: decimal.RequireFromString("49.5")}, 1)

		raw, _, err := fx.storage.Get(ctx, storage.KeyCart)
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"state":{"items":[{"id":"5","title":"Taza","price":49.5,"quantity":1}],"isLoading":false},"version":0}`,
			raw)

		restored := NewStore(ctx, Deps{Storage: fx.storage})
		require.Len(t, restored.Items(), 1)
		assert.True(t, decimal.RequireFromString("49.5").Equal(restored.Items()[0].Price))
	})
}

// failingStore rejects writes
type failingStore struct{ *storage.MemoryStore }

func (failingStore) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestPersistFailureKeepsMutation(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := NewStore(context.Background(), Deps{
		Storage: failingStore{storage.NewMemoryStore()},
		Logger:  zap.New(core),
	})

	s.AddItem(context.Background(), cart.Product{ID: "1", Price: decimal.NewFromInt(3)}, 1)

	assert.Equal(t, 1, s.ItemCount())
	assert.Equal(t, 1, logs.FilterMessage("Failed to persist cart").Len())
}

func TestSubscribe(t *testing.T) {
	fx := newFixture(t, "")
	ctx := context.Background()

	var counts []int
	unsubscribe := fx.store.Subscribe(func(s Snapshot) { counts = append(counts, s.Count) })

	fx.store.AddItem(ctx, cart.Product{ID: "1", Price: decimal.NewFromInt(1)}, 2)
	fx.store.AddItem(ctx, cart.Product{ID: "2", Price: decimal.NewFromInt(1)}, 1)
	unsubscribe()
	unsubscribe()
	fx.store.ClearCart(ctx)

	assert.Equal(t, []int{2, 3}, counts)
}

func TestConcurrentMutations(t *testing.T) {
	fx := newFixture(t, "tok")
	ctx := context.Background()
	fx.mirror.On("AddItem", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	p := cart.Product{ID: "1", Price: decimal.RequireFromString("2.5")}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fx.store.AddItem(ctx, p, 1)
			_ = fx.store.Total()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, fx.store.ItemCount())
	assert.Equal(t, "125", fx.store.Total().String())
	fx.mirrorCount(t, OpAdd, telemetry.MirrorOK, 50)
}
