package ledger

import "github.com/mpvestiario/backend/internal/domain/shared"

// CheckIssue validates taking qty units out of the given stock.
func CheckIssue(stock, qty int) error {
	if err := ValidateQuantity(qty); err != nil {
		return err
	}
	if qty > stock {
		return shared.NewInsufficientStockError(qty, stock)
	}
	return nil
}

// ProjectEdit computes the effect of changing an assignment from oldQty to
// newQty against the current stock. delta is newQty-oldQty; projected is the
// stock after the edit. A negative delta returns units to stock.
func ProjectEdit(stock, oldQty, newQty int) (delta, projected int, err error) {
	if err := ValidateQuantity(newQty); err != nil {
		return 0, stock, err
	}
	delta = newQty - oldQty
	projected = stock - delta
	if projected < 0 {
		return delta, stock, shared.NewInsufficientStockError(delta, stock)
	}
	return delta, projected, nil
}

// ProjectDelete returns the stock after an assignment of qty units is removed
func ProjectDelete(stock, qty int) int {
	return stock + qty
}
