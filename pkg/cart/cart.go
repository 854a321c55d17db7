// Package cart implements the buyer-side shopping cart: an in-memory state
// container, a quantity-mutation protocol against the remote cart API, and the
// notification feedback loop that keeps the UI consistent under rapid,
// possibly overlapping actions.
package cart

// ProductSnapshot is a denormalized copy of the product at the time the line
// was added. It is a point-in-time value, not a live reference to the catalog.
type ProductSnapshot struct {
	Name      string   `json:"name"`
	UnitPrice int64    `json:"unit_price"` // cents
	Category  string   `json:"category"`
	Images    []string `json:"images,omitempty"`
	Stock     int      `json:"stock"`
}

// LineItem is one product entry in a cart. The ID is assigned by the server
// and is unique within the cart.
type LineItem struct {
	ID       string          `json:"id"`
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

// Subtotal is always recomputed from quantity and unit price, never stored.
func (li LineItem) Subtotal() int64 {
	return int64(li.Quantity) * li.Product.UnitPrice
}

// Cart is the derived view handed to renderers. Totals are computed from
// Items at snapshot time; there is no independent mutation path for them.
type Cart struct {
	Items      []LineItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice int64      `json:"total_price"`
}
