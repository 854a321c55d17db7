package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cartflow/pkg/logger"
)

// Checkout readiness failures.
var (
	ErrCartEmpty    = errors.New("cart is empty")
	ErrSyncInFlight = errors.New("cart mutation in flight")
)

// Controller wires the store, the stock clamp, the per-item serializer, the
// syncer and the notification queue together. It is the only writer of the
// Store and the only thing UI components call.
//
// Per line item a mutation moves idle -> admitted -> in-flight -> applied or
// rejected -> idle. A second request for a busy item is dropped, not queued;
// the user re-triggers after the first resolves.
type Controller struct {
	store      *Store
	syncer     Syncer
	notes      *NotificationQueue
	gate       *Serializer
	log        *logger.Logger
	optimistic bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithOptimistic applies the requested quantity before the server responds
// and reconciles (or rolls back) when it does. The default is conservative:
// the store changes only after the server confirms.
func WithOptimistic() Option {
	return func(c *Controller) { c.optimistic = true }
}

// WithDisplayDuration overrides how long notifications stay visible.
func WithDisplayDuration(d time.Duration) Option {
	return func(c *Controller) { c.notes = NewNotificationQueue(d) }
}

// NewController returns a Controller with an empty store.
func NewController(syncer Syncer, log *logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:  NewStore(),
		syncer: syncer,
		notes:  NewNotificationQueue(DefaultDisplayDuration),
		gate:   NewSerializer(),
		log:    log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current derived cart view for rendering.
func (c *Controller) Snapshot() Cart { return c.store.Snapshot() }

// Notifications returns the live toast queue.
func (c *Controller) Notifications() []Notification { return c.notes.List() }

// DismissNotification removes one toast.
func (c *Controller) DismissNotification(id string) { c.notes.Dismiss(id) }

// ItemBusy reports whether a mutation is in flight for the line item, so the
// UI can disable just that item's controls.
func (c *Controller) ItemBusy(id string) bool { return c.gate.Busy(id) }

// Refresh refetches the whole cart and replaces the local view. It is not
// serialized against per-item mutations: a mutation resolving after the
// refresh lands on top of the refreshed view.
func (c *Controller) Refresh(ctx context.Context) error {
	items, err := c.syncer.FetchCart(ctx)
	if err != nil {
		c.reject(ctx, "refresh", "", err)
		return err
	}
	c.store.Load(items)
	return nil
}

// UpdateQuantity requests a new quantity for one line item. A requested
// quantity of zero or less means remove. The quantity is clamped against the
// snapshot's stock before the network call; the store is updated with the
// server-returned quantity, which may differ from the requested one.
func (c *Controller) UpdateQuantity(ctx context.Context, id string, requested int) error {
	if requested <= 0 {
		return c.Remove(ctx, id)
	}
	prev, ok := c.store.Get(id)
	if !ok {
		// Already gone locally, likely removed by a concurrent operation.
		return nil
	}
	qty, clamped := ClampQuantity(prev, requested)
	if clamped {
		c.notes.Push(NoteInfo, fmt.Sprintf("Only %d of %s available", qty, prev.Product.Name))
	}
	if qty == prev.Quantity {
		return nil
	}
	if !c.gate.Admit(id) {
		return nil
	}
	defer c.gate.Release(id)

	if c.optimistic {
		c.store.ApplyQuantity(id, qty)
	}
	li, err := c.syncer.UpdateQuantity(ctx, id, qty)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) && ce.Kind == KindNotFound {
			// The item is gone server-side, which is the state a removal
			// would have produced anyway. Converge silently.
			c.store.Remove(id)
			return nil
		}
		if c.optimistic {
			c.store.ApplyQuantity(id, prev.Quantity)
		}
		c.reject(ctx, "update quantity", id, err)
		return err
	}
	c.store.ApplyQuantity(id, li.Quantity)
	c.notes.Push(NoteSuccess, "Cart updated")
	return nil
}

// Remove deletes one line item.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if _, ok := c.store.Get(id); !ok {
		return nil
	}
	if !c.gate.Admit(id) {
		return nil
	}
	defer c.gate.Release(id)

	if err := c.syncer.RemoveItem(ctx, id); err != nil {
		var ce *Error
		if errors.As(err, &ce) && ce.Kind == KindNotFound {
			c.store.Remove(id)
			return nil
		}
		c.reject(ctx, "remove item", id, err)
		return err
	}
	c.store.Remove(id)
	c.notes.Push(NoteSuccess, "Item removed")
	return nil
}

// Clear empties the cart server-side, then locally.
func (c *Controller) Clear(ctx context.Context) error {
	if err := c.syncer.ClearCart(ctx); err != nil {
		c.reject(ctx, "clear cart", "", err)
		return err
	}
	c.store.Clear()
	c.notes.Push(NoteSuccess, "Cart cleared")
	return nil
}

// BeginCheckout is the readiness check before handing off to the checkout
// flow: the cart must be non-empty and no mutation may be in flight.
func (c *Controller) BeginCheckout() error {
	if len(c.store.Snapshot().Items) == 0 {
		return ErrCartEmpty
	}
	if c.gate.InFlight() > 0 {
		return ErrSyncInFlight
	}
	return nil
}

// reject surfaces a failed mutation once and leaves the store at its last
// known-good value. Nothing here is fatal to the page.
func (c *Controller) reject(ctx context.Context, op, id string, err error) {
	if c.log != nil {
		c.log.Error(ctx, op, "id", id, "error", err)
	}
	c.notes.Push(NoteError, userMessage(err))
}

func userMessage(err error) string {
	var ce *Error
	if !errors.As(err, &ce) {
		return "Something went wrong, please try again"
	}
	switch ce.Kind {
	case KindNetwork:
		return "Network error, please check your connection and try again"
	case KindStockExceeded:
		return "The requested quantity is no longer available"
	case KindUnauthorized:
		return "Please sign in to manage your cart"
	default:
		return "Something went wrong, please try again"
	}
}
