// Package cartapi defines the server-side cart line repository used by the
// reference cart API. Clients never see this package; they see only the REST
// contract it backs.
package cartapi

import (
	"context"
	"errors"

	"cartflow/pkg/cart"
)

// ErrNotFound indicates the requested cart line does not exist.
var ErrNotFound = errors.New("cart line not found")

// ErrStock indicates the requested quantity exceeds the available stock. The
// server-side check is authoritative, whatever the client pre-checked.
var ErrStock = errors.New("quantity exceeds available stock")

// Repository defines behavior for persisting a buyer's cart lines. Lines are
// scoped by owner (the session user) and kept in insertion order.
type Repository interface {
	List(ctx context.Context, owner string) ([]cart.LineItem, error)
	Get(ctx context.Context, owner, id string) (cart.LineItem, error)
	Add(ctx context.Context, owner string, li cart.LineItem) (cart.LineItem, error)
	SetQuantity(ctx context.Context, owner, id string, quantity int) (cart.LineItem, error)
	Delete(ctx context.Context, owner, id string) error
	Clear(ctx context.Context, owner string) error
}
