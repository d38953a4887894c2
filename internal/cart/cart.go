package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvalderrama/tillpoint/pkg/db/models"
	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
)

// Line is one product in the cart with the quantity reserved against its
// stock snapshot.
type Line struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Subtotal returns unit price times quantity for the line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the in-memory working set for a sale in progress. Lines keep
// insertion order; quantities never exceed the product's snapshotted stock.
// Cart is not safe for concurrent use; Manager serializes access.
type Cart struct {
	lines []*Line
	index map[uuid.UUID]*Line
}

func New() *Cart {
	return &Cart{index: make(map[uuid.UUID]*Line)}
}

// AddQuantity adds qty units of the product, creating the line if absent.
// The product argument carries the current stock snapshot and replaces the
// one stored on an existing line.
func (c *Cart) AddQuantity(product models.Product, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, "quantity must be positive")
	}

	line, ok := c.index[product.ID]
	current := 0
	if ok {
		current = line.Quantity
	}
	available := product.Stock - current
	if qty > available {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"available": available,
				"requested": qty,
			})
	}

	if ok {
		line.Product = product
		line.Quantity = current + qty
		return nil
	}

	line = &Line{Product: product, Quantity: qty}
	c.lines = append(c.lines, line)
	c.index[product.ID] = line
	return nil
}

// SetQuantity replaces the quantity on an existing line. A quantity of zero
// or less removes the line; the line must already exist.
func (c *Cart) SetQuantity(productID uuid.UUID, qty int) error {
	line, ok := c.index[productID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	if qty <= 0 {
		c.remove(productID)
		return nil
	}
	if qty > line.Product.Stock {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"available": line.Product.Stock,
				"requested": qty,
			})
	}

	line.Quantity = qty
	return nil
}

// RemoveOne decrements the line by one unit, removing it at zero.
func (c *Cart) RemoveOne(productID uuid.UUID) error {
	line, ok := c.index[productID]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	if line.Quantity <= 1 {
		c.remove(productID)
		return nil
	}
	line.Quantity--
	return nil
}

// RemoveAll drops the whole line for the product.
func (c *Cart) RemoveAll(productID uuid.UUID) error {
	if _, ok := c.index[productID]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}
	c.remove(productID)
	return nil
}

// Clear empties the cart. Clearing an empty cart is a no-op.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[uuid.UUID]*Line)
}

// ReservedQuantity returns the quantity held for the product, zero if absent.
func (c *Cart) ReservedQuantity(productID uuid.UUID) int {
	if line, ok := c.index[productID]; ok {
		return line.Quantity
	}
	return 0
}

// Lines returns the cart lines in insertion order. The returned slice is a
// copy; the Line values are snapshots.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, *line)
	}
	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// LineCount returns the number of distinct products.
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// TotalItems returns the summed quantity across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

// Subtotal returns the cart total across all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (c *Cart) remove(productID uuid.UUID) {
	delete(c.index, productID)
	for i, line := range c.lines {
		if line.Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}
