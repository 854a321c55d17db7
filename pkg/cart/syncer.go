package cart

import "context"

// Syncer defines behavior for talking to the remote cart API. Expected
// failure modes come back as *Error; implementations never panic on them.
// The httpsync package provides the REST implementation.
type Syncer interface {
	FetchCart(ctx context.Context) ([]LineItem, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) (LineItem, error)
	RemoveItem(ctx context.Context, id string) error
	ClearCart(ctx context.Context) error
}
