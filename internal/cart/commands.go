package cart

import "github.com/baraddmarketing/cart-checkout/internal/domain"

// Command is one of the cart transitions below. The set is closed.
type Command interface {
	Name() string
	command()
}

// AddItem merges into the line with the same item key or appends a new line.
// A quantity below 1 is treated as 1.
type AddItem struct {
	Product  domain.Product
	Quantity int
}

type RemoveItem struct {
	ItemKey string
}

// UpdateQuantity sets the quantity of a line; 0 or less removes it.
type UpdateQuantity struct {
	ItemKey  string
	Quantity int
}

type ClearCart struct{}

// RemoveOrdered subtracts the quantities of an order that was placed from the
// matching lines. Lines that reach zero go away; anything added since the
// order was taken stays.
type RemoveOrdered struct {
	Lines []domain.CartLine
}

type OpenCart struct{}

type CloseCart struct{}

type ToggleCart struct{}

type SetLoading struct {
	Loading bool
}

// Hydrate replaces the lines wholesale and ends the loading phase.
type Hydrate struct {
	Lines []domain.CartLine
}

func (AddItem) Name() string        { return "add_item" }
func (RemoveItem) Name() string     { return "remove_item" }
func (UpdateQuantity) Name() string { return "update_quantity" }
func (ClearCart) Name() string      { return "clear_cart" }
func (RemoveOrdered) Name() string  { return "remove_ordered" }
func (OpenCart) Name() string       { return "open_cart" }
func (CloseCart) Name() string      { return "close_cart" }
func (ToggleCart) Name() string     { return "toggle_cart" }
func (SetLoading) Name() string     { return "set_loading" }
func (Hydrate) Name() string        { return "hydrate" }

func (AddItem) command()        {}
func (RemoveItem) command()     {}
func (UpdateQuantity) command() {}
func (ClearCart) command()      {}
func (RemoveOrdered) command()  {}
func (OpenCart) command()       {}
func (CloseCart) command()      {}
func (ToggleCart) command()     {}
func (SetLoading) command()     {}
func (Hydrate) command()        {}
