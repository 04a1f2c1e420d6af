package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Record is the persisted shape of one cart line. The field names match the
// storage format written by earlier versions of the shop, so saved carts stay
// readable.
type Record struct {
	Name      string          `json:"nombre"`
	UnitPrice decimal.Decimal `json:"precio"`
	Quantity  int             `json:"cantidad"`
}

// MarshalJSON writes the price as a JSON number instead of decimal's default
// quoted string.
func (r Record) MarshalJSON() ([]byte, error) {
	type wire struct {
		Name      string      `json:"nombre"`
		UnitPrice json.Number `json:"precio"`
		Quantity  int         `json:"cantidad"`
	}
	return json.Marshal(wire{
		Name:      r.Name,
		UnitPrice: json.Number(r.UnitPrice.String()),
		Quantity:  r.Quantity,
	})
}

// RestoreReport summarises a Restore call.
type RestoreReport struct {
	Restored int
	Skipped  int
	Merged   int
}

// Records returns the persisted representation of the cart lines, in order.
func (c *Cart) Records() []Record {
	records := make([]Record, 0, len(c.lines))
	for _, line := range c.lines {
		records = append(records, Record{
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return records
}

// Restore rebuilds a cart from persisted records. Each record becomes a single
// line carrying its stored quantity; quantities are never replayed one unit at
// a time. Records without a name or with a quantity below 1 are skipped.
// Duplicate names are merged by summing quantities, keeping the first price.
func Restore(records []Record) (*Cart, RestoreReport) {
	c := New()
	report := RestoreReport{}
	for _, record := range records {
		if record.Name == "" || record.Quantity < 1 {
			report.Skipped++
			continue
		}
		if pos, ok := c.index[record.Name]; ok {
			c.lines[pos].Quantity += record.Quantity
			report.Merged++
			continue
		}
		c.index[record.Name] = len(c.lines)
		c.lines = append(c.lines, Line{
			Name:      record.Name,
			UnitPrice: record.UnitPrice,
			Quantity:  record.Quantity,
		})
		report.Restored++
	}
	return c, report
}

// Replace swaps the cart contents for the lines rebuilt from records and
// returns a restored change.
func (c *Cart) Replace(records []Record) (Change, RestoreReport) {
	restored, report := Restore(records)
	c.lines = restored.lines
	c.index = restored.index
	return Change{Kind: ChangeRestored, Quantity: len(c.lines)}, report
}
