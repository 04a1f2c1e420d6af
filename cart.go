package cart

import "github.com/shopspring/decimal"

// Cart aggregates selected catalog items into lines keyed by name. Lines keep
// the order in which they were first added.
//
// A Cart is not safe for concurrent use; its owner serializes access.
type Cart struct {
	lines []Line
	index map[string]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{index: map[string]int{}}
}

// Add places one unit of item into the cart. When a line with the same name
// exists its quantity is incremented and its stored price is kept; otherwise a
// new line with quantity 1 is appended using the item's price. Items without a
// name are ignored.
func (c *Cart) Add(item CatalogItem) Change {
	if item.Name == "" {
		return noChange("")
	}
	c.ensureIndex()
	if pos, ok := c.index[item.Name]; ok {
		c.lines[pos].Quantity++
		return Change{Kind: ChangeIncremented, Name: item.Name, Quantity: c.lines[pos].Quantity}
	}
	c.index[item.Name] = len(c.lines)
	c.lines = append(c.lines, Line{Name: item.Name, UnitPrice: item.UnitPrice, Quantity: 1})
	return Change{Kind: ChangeAdded, Name: item.Name, Quantity: 1}
}

// Remove takes one unit of the named line out of the cart: the quantity is
// decremented, and a line holding a single unit is deleted. Unknown names are
// a no-op.
func (c *Cart) Remove(name string) Change {
	c.ensureIndex()
	pos, ok := c.index[name]
	if !ok {
		return noChange(name)
	}
	if c.lines[pos].Quantity > 1 {
		c.lines[pos].Quantity--
		return Change{Kind: ChangeDecremented, Name: name, Quantity: c.lines[pos].Quantity}
	}
	c.deleteAt(pos)
	return Change{Kind: ChangeRemoved, Name: name}
}

// Total returns the sum of UnitPrice x Quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() Change {
	removed := len(c.lines)
	c.lines = nil
	c.index = map[string]int{}
	return Change{Kind: ChangeCleared, Quantity: removed}
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	if len(c.lines) == 0 {
		return []Line{}
	}
	return append([]Line(nil), c.lines...)
}

// Line returns the line stored under name.
func (c *Cart) Line(name string) (Line, bool) {
	c.ensureIndex()
	pos, ok := c.index[name]
	if !ok {
		return Line{}, false
	}
	return c.lines[pos], true
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Count returns the number of units across all lines.
func (c *Cart) Count() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) deleteAt(pos int) {
	name := c.lines[pos].Name
	c.lines = append(c.lines[:pos], c.lines[pos+1:]...)
	delete(c.index, name)
	for i := pos; i < len(c.lines); i++ {
		c.index[c.lines[i].Name] = i
	}
}

// ensureIndex lets the zero Cart be used directly.
func (c *Cart) ensureIndex() {
	if c.index != nil {
		return
	}
	c.index = make(map[string]int, len(c.lines))
	for i, line := range c.lines {
		c.index[line.Name] = i
	}
}
