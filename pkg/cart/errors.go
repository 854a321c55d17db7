package cart

import "fmt"

// ErrorKind classifies expected failure modes of cart synchronization.
type ErrorKind string

const (
	// KindNetwork means the request never produced a response.
	KindNetwork ErrorKind = "network"
	// KindStockExceeded means the server-side stock check failed. The server
	// is authoritative here; the client-side clamp is only an optimistic
	// pre-check and can be overridden (another buyer may have taken the
	// remaining stock since page load).
	KindStockExceeded ErrorKind = "stock_exceeded"
	// KindNotFound means the line item no longer exists server-side.
	KindNotFound ErrorKind = "not_found"
	// KindUnauthorized means the session is missing or expired.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindServer covers 5xx and anything else unexpected.
	KindServer ErrorKind = "server_error"
	// KindInvalidQuantity is client-local; it never reaches the network.
	KindInvalidQuantity ErrorKind = "invalid_quantity"
)

// Error is the typed outcome of a failed cart mutation. Expected failures are
// returned as *Error rather than raised, so callers branch on Kind instead of
// reasoning about propagation across event handlers.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cart: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("cart: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// NewError builds an Error of the given kind wrapping an optional cause.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}
