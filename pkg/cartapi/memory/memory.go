// Package memory implements an in-memory cart line repository.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"cartflow/pkg/cart"
	"cartflow/pkg/cartapi"
)

// Repository provides an in-memory implementation of cartapi.Repository.
// Lines are stored per owner in insertion order.
type Repository struct {
	mu    sync.RWMutex
	lines map[string][]cart.LineItem
}

// New creates a new in-memory repository.
func New() *Repository {
	return &Repository{lines: make(map[string][]cart.LineItem)}
}

// List returns the owner's cart lines in insertion order.
func (r *Repository) List(ctx context.Context, owner string) ([]cart.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]cart.LineItem, len(r.lines[owner]))
	copy(out, r.lines[owner])
	return out, nil
}

// Get retrieves one cart line.
func (r *Repository) Get(ctx context.Context, owner, id string) (cart.LineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, li := range r.lines[owner] {
		if li.ID == id {
			return li, nil
		}
	}
	return cart.LineItem{}, cartapi.ErrNotFound
}

// Add appends a line, assigning an id when the caller left it empty. Adding a
// product already in the cart increments the existing line instead.
func (r *Repository) Add(ctx context.Context, owner string, li cart.LineItem) (cart.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lines[owner] {
		if r.lines[owner][i].Product.Name == li.Product.Name {
			merged := r.lines[owner][i].Quantity + li.Quantity
			if merged > r.lines[owner][i].Product.Stock {
				return cart.LineItem{}, cartapi.ErrStock
			}
			r.lines[owner][i].Quantity = merged
			return r.lines[owner][i], nil
		}
	}
	if li.ID == "" {
		li.ID = uuid.NewString()
	}
	if li.Quantity > li.Product.Stock {
		return cart.LineItem{}, cartapi.ErrStock
	}
	r.lines[owner] = append(r.lines[owner], li)
	return li, nil
}

// SetQuantity updates one line's quantity after the authoritative stock
// check. A quantity of zero or less removes the line.
func (r *Repository) SetQuantity(ctx context.Context, owner, id string, quantity int) (cart.LineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lines[owner] {
		li := r.lines[owner][i]
		if li.ID != id {
			continue
		}
		if quantity <= 0 {
			r.lines[owner] = append(r.lines[owner][:i], r.lines[owner][i+1:]...)
			li.Quantity = 0
			return li, nil
		}
		if quantity > li.Product.Stock {
			return cart.LineItem{}, cartapi.ErrStock
		}
		r.lines[owner][i].Quantity = quantity
		return r.lines[owner][i], nil
	}
	return cart.LineItem{}, cartapi.ErrNotFound
}

// Delete removes one line.
func (r *Repository) Delete(ctx context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lines[owner] {
		if r.lines[owner][i].ID == id {
			r.lines[owner] = append(r.lines[owner][:i], r.lines[owner][i+1:]...)
			return nil
		}
	}
	return cartapi.ErrNotFound
}

// Clear removes every line for the owner.
func (r *Repository) Clear(ctx context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, owner)
	return nil
}
