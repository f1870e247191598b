package checkout

import "errors"

// InvalidTotal is returned by Pricer.Checkout when the basket cannot be priced.
const InvalidTotal = -1

var (
	// ErrInvalidSKU is returned when a token is not an optional count followed by an item code.
	ErrInvalidSKU = errors.New("sku must be an optional positive count followed by an item code")
	// ErrUnknownItem is returned when an item code is not present in the price list.
	ErrUnknownItem = errors.New("item is not present in the price list")
	// ErrInvalidDeal is returned when a deal description matches no supported pattern.
	ErrInvalidDeal = errors.New("deal description is not recognised")
	// ErrDealItemMismatch is returned when a deal is listed against an item it does not discount.
	ErrDealItemMismatch = errors.New("deal does not apply to the item it is listed under")
	// ErrOverflow is returned when a quantity, cost or total does not fit in an int.
	ErrOverflow = errors.New("quantity or total exceeds the supported range")
	// ErrSearchTooLarge is returned when the optimal search exceeds its state budget.
	ErrSearchTooLarge = errors.New("basket is too large for optimal deal search")
)
