package cart_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cartflow/pkg/cart"
)

// fakeSyncer scripts the remote cart API for controller tests.
type fakeSyncer struct {
	mu          sync.Mutex
	updateCalls int

	fetchFn  func(ctx context.Context) ([]cart.LineItem, error)
	updateFn func(ctx context.Context, id string, quantity int) (cart.LineItem, error)
	removeFn func(ctx context.Context, id string) error
	clearFn  func(ctx context.Context) error
}

func (f *fakeSyncer) FetchCart(ctx context.Context) ([]cart.LineItem, error) {
	if f.fetchFn != nil {
		return f.fetchFn(ctx)
	}
	return nil, nil
}

func (f *fakeSyncer) UpdateQuantity(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
	f.mu.Lock()
	f.updateCalls++
	f.mu.Unlock()
	if f.updateFn != nil {
		return f.updateFn(ctx, id, quantity)
	}
	return cart.LineItem{ID: id, Quantity: quantity}, nil
}

func (f *fakeSyncer) RemoveItem(ctx context.Context, id string) error {
	if f.removeFn != nil {
		return f.removeFn(ctx, id)
	}
	return nil
}

func (f *fakeSyncer) ClearCart(ctx context.Context) error {
	if f.clearFn != nil {
		return f.clearFn(ctx)
	}
	return nil
}

func (f *fakeSyncer) updates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateCalls
}

func seedController(t *testing.T, syncer *fakeSyncer, opts ...cart.Option) *cart.Controller {
	t.Helper()
	items := []cart.LineItem{
		{ID: "x1", Product: cart.ProductSnapshot{Name: "Ceramic Mug", UnitPrice: 1500, Stock: 10}, Quantity: 2},
	}
	syncer.fetchFn = func(ctx context.Context) ([]cart.LineItem, error) { return items, nil }
	c := cart.NewController(syncer, nil, opts...)
	require.NoError(t, c.Refresh(context.Background()))
	return c
}

func notificationsOfKind(c *cart.Controller, kind cart.NotificationKind) []cart.Notification {
	var out []cart.Notification
	for _, n := range c.Notifications() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func TestControllerUpdateQuantityApplied(t *testing.T) {
	syncer := &fakeSyncer{
		updateFn: func(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
			return cart.LineItem{
				ID:       "x1",
				Product:  cart.ProductSnapshot{Name: "Ceramic Mug", UnitPrice: 1500, Stock: 10},
				Quantity: 3,
			}, nil
		},
	}
	c := seedController(t, syncer)

	require.NoError(t, c.UpdateQuantity(context.Background(), "x1", 3))

	snap := c.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, 3, snap.Items[0].Quantity)
	require.Equal(t, 3, snap.TotalItems)
	require.Equal(t, int64(4500), snap.TotalPrice)
	require.Len(t, notificationsOfKind(c, cart.NoteSuccess), 1)
}

func TestControllerUpdateQuantityConvergesToServerValue(t *testing.T) {
	// Server clamps harder than the snapshot suggested.
	syncer := &fakeSyncer{
		updateFn: func(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
			return cart.LineItem{ID: "x1", Product: cart.ProductSnapshot{UnitPrice: 1500}, Quantity: 4}, nil
		},
	}
	c := seedController(t, syncer)

	require.NoError(t, c.UpdateQuantity(context.Background(), "x1", 7))
	require.Equal(t, 4, c.Snapshot().Items[0].Quantity)
}

func TestControllerUpdateQuantityStockExceeded(t *testing.T) {
	syncer := &fakeSyncer{
		updateFn: func(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
			return cart.LineItem{}, cart.NewError(cart.KindStockExceeded, "quantity exceeds available stock", nil)
		},
	}
	c := seedController(t, syncer)

	err := c.UpdateQuantity(context.Background(), "x1", 8)
	require.Error(t, err)

	snap := c.Snapshot()
	require.Equal(t, 2, snap.Items[0].Quantity, "rejected mutation must leave the store untouched")
	require.Equal(t, int64(3000), snap.TotalPrice)
	require.Len(t, notificationsOfKind(c, cart.NoteError), 1)
}

func TestControllerUpdateQuantityClampNotifies(t *testing.T) {
	syncer := &fakeSyncer{
		updateFn: func(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
			return cart.LineItem{ID: "x1", Product: cart.ProductSnapshot{UnitPrice: 1500}, Quantity: quantity}, nil
		},
	}
	c := seedController(t, syncer)

	require.NoError(t, c.UpdateQuantity(context.Background(), "x1", 50))

	infos := notificationsOfKind(c, cart.NoteInfo)
	require.Len(t, infos, 1)
	require.Contains(t, infos[0].Message, "Only 10")
	// The clamped quantity, not the requested one, went over the wire.
	require.Equal(t, 10, c.Snapshot().Items[0].Quantity)
}

func TestControllerUpdateQuantityNotFoundConvergesSilently(t *testing.T) {
	syncer := &fakeSyncer{
		updateFn: func(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
			return cart.LineItem{}, cart.NewError(cart.KindNotFound, "cart line not found", nil)
		},
	}
	c := seedController(t, syncer)

	require.NoError(t, c.UpdateQuantity(context.Background(), "x1", 3))
	require.Empty(t, c.Snapshot().Items, "item gone server-side must be dropped locally")
	require.Empty(t, c.Notifications(), "already-consistent outcome must not notify")
}

func TestControllerUpdateQuantityUnknownItemIsNoop(t *testing.T) {
	syncer := &fakeSyncer{}
	c := seedController(t, syncer)

	require.NoError(t, c.UpdateQuantity(context.Background(), "ghost", 3))
	require.Zero(t, syncer.updates(), "no network call for an unknown item")
}

func TestControllerUpdateQuantityZeroRemoves(t *testing.T) {
	syncer := &fakeSyncer{}
	c := seedController(t, syncer)

	require.NoError(t, c.UpdateQuantity(context.Background(), "x1", 0))
	require.Empty(t, c.Snapshot().Items)
	require.Zero(t, syncer.updates(), "a zero quantity must go through removal, not PATCH")
}

func TestControllerSecondUpdateDroppedWhileFirstInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	syncer := &fakeSyncer{
		updateFn: func(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
			close(entered)
			<-release
			return cart.LineItem{ID: "x1", Product: cart.ProductSnapshot{UnitPrice: 1500}, Quantity: quantity}, nil
		},
	}
	c := seedController(t, syncer)

	done := make(chan error, 1)
	go func() { done <- c.UpdateQuantity(context.Background(), "x1", 3) }()
	<-entered
	require.True(t, c.ItemBusy("x1"))

	// The overlapping click: dropped, not queued.
	require.NoError(t, c.UpdateQuantity(context.Background(), "x1", 4))
	require.Equal(t, 1, syncer.updates())

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, 3, c.Snapshot().Items[0].Quantity)
	require.False(t, c.ItemBusy("x1"))
}

func TestControllerIndependentItemsDoNotBlock(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	syncer := &fakeSyncer{}
	items := []cart.LineItem{
		{ID: "a", Product: cart.ProductSnapshot{Name: "Mug", UnitPrice: 1500, Stock: 10}, Quantity: 1},
		{ID: "b", Product: cart.ProductSnapshot{Name: "Bag", UnitPrice: 2200, Stock: 10}, Quantity: 1},
	}
	syncer.fetchFn = func(ctx context.Context) ([]cart.LineItem, error) { return items, nil }
	syncer.updateFn = func(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
		if id == "a" {
			close(entered)
			<-release
		}
		return cart.LineItem{ID: id, Quantity: quantity}, nil
	}
	c := cart.NewController(syncer, nil)
	require.NoError(t, c.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() { done <- c.UpdateQuantity(context.Background(), "a", 2) }()
	<-entered

	require.NoError(t, c.UpdateQuantity(context.Background(), "b", 3))
	require.Equal(t, 3, findItem(t, c, "b").Quantity, "b must mutate while a is in flight")

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, 2, findItem(t, c, "a").Quantity)
}

func TestControllerRemove(t *testing.T) {
	syncer := &fakeSyncer{}
	c := seedController(t, syncer)

	require.NoError(t, c.Remove(context.Background(), "x1"))
	require.Empty(t, c.Snapshot().Items)
	require.Len(t, notificationsOfKind(c, cart.NoteSuccess), 1)
}

func TestControllerRemoveNotFoundIsSilent(t *testing.T) {
	syncer := &fakeSyncer{
		removeFn: func(ctx context.Context, id string) error {
			return cart.NewError(cart.KindNotFound, "cart line not found", nil)
		},
	}
	c := seedController(t, syncer)

	require.NoError(t, c.Remove(context.Background(), "x1"))
	require.Empty(t, c.Snapshot().Items)
	require.Empty(t, c.Notifications())
}

func TestControllerClear(t *testing.T) {
	syncer := &fakeSyncer{}
	c := seedController(t, syncer)

	require.NoError(t, c.Clear(context.Background()))
	snap := c.Snapshot()
	require.Empty(t, snap.Items)
	require.Zero(t, snap.TotalItems)
	require.Zero(t, snap.TotalPrice)
}

func TestControllerClearFailureLeavesState(t *testing.T) {
	syncer := &fakeSyncer{
		clearFn: func(ctx context.Context) error {
			return cart.NewError(cart.KindNetwork, "no response from cart API", nil)
		},
	}
	c := seedController(t, syncer)

	require.Error(t, c.Clear(context.Background()))
	require.Len(t, c.Snapshot().Items, 1)
	require.Len(t, notificationsOfKind(c, cart.NoteError), 1)
}

func TestControllerBeginCheckout(t *testing.T) {
	syncer := &fakeSyncer{}
	empty := cart.NewController(syncer, nil)
	require.ErrorIs(t, empty.BeginCheckout(), cart.ErrCartEmpty)

	c := seedController(t, syncer)
	require.NoError(t, c.BeginCheckout())

	release := make(chan struct{})
	entered := make(chan struct{})
	syncer.updateFn = func(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
		close(entered)
		<-release
		return cart.LineItem{ID: id, Quantity: quantity}, nil
	}
	done := make(chan error, 1)
	go func() { done <- c.UpdateQuantity(context.Background(), "x1", 3) }()
	<-entered
	require.ErrorIs(t, c.BeginCheckout(), cart.ErrSyncInFlight)

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, c.BeginCheckout())
}

func TestControllerOptimisticModeRollsBack(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	syncer := &fakeSyncer{
		updateFn: func(ctx context.Context, id string, quantity int) (cart.LineItem, error) {
			close(entered)
			<-release
			return cart.LineItem{}, cart.NewError(cart.KindStockExceeded, "quantity exceeds available stock", nil)
		},
	}
	c := seedController(t, syncer, cart.WithOptimistic())

	done := make(chan error, 1)
	go func() { done <- c.UpdateQuantity(context.Background(), "x1", 5) }()
	<-entered
	require.Equal(t, 5, c.Snapshot().Items[0].Quantity, "optimistic mode applies before the response")

	close(release)
	require.Error(t, <-done)
	require.Equal(t, 2, c.Snapshot().Items[0].Quantity, "rejection must roll back the optimistic value")
}

func TestControllerRefreshFailureNotifies(t *testing.T) {
	syncer := &fakeSyncer{
		fetchFn: func(ctx context.Context) ([]cart.LineItem, error) {
			return nil, cart.NewError(cart.KindUnauthorized, "session expired", nil)
		},
	}
	c := cart.NewController(syncer, nil, cart.WithDisplayDuration(time.Minute))

	require.Error(t, c.Refresh(context.Background()))
	errs := notificationsOfKind(c, cart.NoteError)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Message, "sign in")
}

func findItem(t *testing.T, c *cart.Controller, id string) cart.LineItem {
	t.Helper()
	for _, li := range c.Snapshot().Items {
		if li.ID == id {
			return li
		}
	}
	t.Fatalf("item %s not in snapshot", id)
	return cart.LineItem{}
}
