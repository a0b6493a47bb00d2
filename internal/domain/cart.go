package domain

// CartLine is one row of the cart. Quantity is always >= 1.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	ItemKey  string  `json:"itemKey"`
}

// Snapshot is the complete cart state at one version.
type Snapshot struct {
	Lines        []CartLine `json:"lines"`
	IsDrawerOpen bool       `json:"isDrawerOpen"`
	IsLoading    bool       `json:"isLoading"`
}

// CloneLines deep-copies a line list.
func CloneLines(lines []CartLine) []CartLine {
	if lines == nil {
		return nil
	}
	out := make([]CartLine, len(lines))
	for i, l := range lines {
		out[i] = CartLine{
			Product:  l.Product.Clone(),
			Quantity: l.Quantity,
			ItemKey:  l.ItemKey,
		}
	}
	return out
}

// Clone returns a snapshot that shares no memory with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Lines:        CloneLines(s.Lines),
		IsDrawerOpen: s.IsDrawerOpen,
		IsLoading:    s.IsLoading,
	}
}

// Line returns the line with the given item key.
func (s Snapshot) Line(itemKey string) (CartLine, bool) {
	for _, l := range s.Lines {
		if l.ItemKey == itemKey {
			return l, true
		}
	}
	return CartLine{}, false
}
