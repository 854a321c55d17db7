package cart

// ClampQuantity validates a requested quantity against the line's known stock.
// Requests below 1 clamp to 1 and requests above the snapshot's stock clamp to
// the stock, with clamped reporting whether either bound was hit so the caller
// can tell the user ("only N left"). This is an optimistic pre-check only; the
// server remains authoritative.
func ClampQuantity(li LineItem, requested int) (quantity int, clamped bool) {
	if requested < 1 {
		return 1, true
	}
	if stock := li.Product.Stock; stock > 0 && requested > stock {
		return stock, true
	}
	return requested, false
}
