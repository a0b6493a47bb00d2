package cart

import (
	"fmt"

	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/baraddmarketing/cart-checkout/internal/pricing"
)

// Initial is the state a store starts in before restore.
func Initial() domain.Snapshot {
	return domain.Snapshot{Lines: []domain.CartLine{}, IsLoading: true}
}

// Reduce applies cmd to s and returns the next snapshot. s is left untouched.
func Reduce(s domain.Snapshot, cmd Command) domain.Snapshot {
	next := domain.Snapshot{
		Lines:        s.Lines,
		IsDrawerOpen: s.IsDrawerOpen,
		IsLoading:    s.IsLoading,
	}

	switch c := cmd.(type) {
	case AddItem:
		next.Lines = addItem(s.Lines, c)
	case RemoveItem:
		next.Lines = without(s.Lines, c.ItemKey)
	case UpdateQuantity:
		if c.Quantity <= 0 {
			next.Lines = without(s.Lines, c.ItemKey)
			break
		}
		next.Lines = withQuantity(s.Lines, c.ItemKey, c.Quantity)
	case ClearCart:
		next.Lines = []domain.CartLine{}
	case RemoveOrdered:
		next.Lines = removeOrdered(s.Lines, c.Lines)
	case OpenCart:
		next.IsDrawerOpen = true
	case CloseCart:
		next.IsDrawerOpen = false
	case ToggleCart:
		next.IsDrawerOpen = !s.IsDrawerOpen
	case SetLoading:
		next.IsLoading = c.Loading
	case Hydrate:
		next.Lines = domain.CloneLines(c.Lines)
		if next.Lines == nil {
			next.Lines = []domain.CartLine{}
		}
		next.IsLoading = false
	default:
		panic(fmt.Sprintf("cart: unknown command %T", cmd))
	}

	return next
}

func addItem(lines []domain.CartLine, c AddItem) []domain.CartLine {
	qty := c.Quantity
	if qty < 1 {
		qty = 1
	}
	key := pricing.ItemKey(c.Product.ID, c.Product.VariantID())

	out := domain.CloneLines(lines)
	for i := range out {
		if out[i].ItemKey == key {
			out[i].Quantity += qty
			return out
		}
	}

	return append(out, domain.CartLine{
		Product:  c.Product.Clone(),
		Quantity: qty,
		ItemKey:  key,
	})
}

func without(lines []domain.CartLine, key string) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range domain.CloneLines(lines) {
		if l.ItemKey != key {
			out = append(out, l)
		}
	}
	return out
}

func withQuantity(lines []domain.CartLine, key string, qty int) []domain.CartLine {
	out := domain.CloneLines(lines)
	if out == nil {
		out = []domain.CartLine{}
	}
	for i := range out {
		if out[i].ItemKey == key {
			out[i].Quantity = qty
		}
	}
	return out
}

func removeOrdered(lines, ordered []domain.CartLine) []domain.CartLine {
	taken := make(map[string]int, len(ordered))
	for _, l := range ordered {
		taken[l.ItemKey] += l.Quantity
	}

	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range domain.CloneLines(lines) {
		l.Quantity -= taken[l.ItemKey]
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out
}
