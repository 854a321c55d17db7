package cart

import "sync"

// Store holds the in-memory cart line items and is the single source of truth
// the UI reads. It is written only by the Controller; all mutations are
// synchronous and perform no I/O. Insertion order is display order.
type Store struct {
	mu    sync.Mutex
	items []LineItem
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the entire item list, typically after a full cart fetch.
func (s *Store) Load(items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]LineItem, len(items))
	copy(s.items, items)
}

// Get returns the line item with the given id, if present.
func (s *Store) Get(id string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, li := range s.items {
		if li.ID == id {
			return li, true
		}
	}
	return LineItem{}, false
}

// ApplyQuantity sets one line item's quantity in place. A quantity of zero or
// less removes the line. An unknown id is a silent no-op: the item may have
// been removed by a concurrent operation and the end state is already correct.
func (s *Store) ApplyQuantity(id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if quantity <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = quantity
		}
		return
	}
}

// Remove removes a line item unconditionally. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Snapshot returns the current derived view. Totals are recomputed from the
// items on every call so they can never drift from the line data.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Cart{Items: make([]LineItem, len(s.items))}
	copy(c.Items, s.items)
	for _, li := range c.Items {
		c.TotalItems += li.Quantity
		c.TotalPrice += li.Subtotal()
	}
	return c
}
