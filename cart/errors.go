package cart

import (
	"errors"
	"fmt"
)

var (
	ErrClearNotConfirmed = errors.New("clearing the cart requires confirmation")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrMissingItemID     = errors.New("item id is required")
	ErrCartUnavailable   = errors.New("cart could not be loaded")
)

// MinQuantityError is returned when a change would take a line below its
// minimum order quantity. The ledger is left unchanged.
type MinQuantityError struct {
	CartID string
	MinQty int
	Unit   string
}

func (e *MinQuantityError) Error() string {
	if e.Unit == "" {
		return fmt.Sprintf("minimum order is %d", e.MinQty)
	}
	return fmt.Sprintf("minimum order is %d %s", e.MinQty, e.Unit)
}
