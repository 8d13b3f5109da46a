package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CartLine is one entry of the session cart, keyed by variant. Name and Price
// are snapshots taken when the line is added, so a later catalog price change
// does not alter a cart the visitor is still building.
type CartLine struct {
	VariantID string
	ProductID string
	Name      string
	Price     decimal.Decimal
	Color     string
	ImageURL  string
	Qty       int
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Cart is the session-scoped ledger of lines. It is an explicit value carried
// through handlers and persisted by the session store, never ambient state.
type Cart struct {
	Lines map[string]CartLine
}

func NewCart() Cart {
	return Cart{Lines: map[string]CartLine{}}
}

// Add increments the existing line for the variant or inserts a new one
// snapshotting the current product name, price and variant color/image.
func (c *Cart) Add(product *Product, variant *ColorVariant, qty int) {
	if c.Lines == nil {
		c.Lines = map[string]CartLine{}
	}
	if line, ok := c.Lines[variant.ID]; ok {
		line.Qty += qty
		c.Lines[variant.ID] = line
		return
	}
	c.Lines[variant.ID] = CartLine{
		VariantID: variant.ID,
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Color:     variant.Color,
		ImageURL:  variant.Image,
		Qty:       qty,
	}
}

// Remove deletes the line for the variant. Removing an absent line is a no-op.
func (c *Cart) Remove(variantID string) {
	delete(c.Lines, variantID)
}

func (c Cart) Count() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Qty
	}
	return count
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Items returns the lines in a stable order for rendering.
func (c Cart) Items() []CartLine {
	items := make([]CartLine, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, line)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].VariantID < items[j].VariantID
	})
	return items
}
