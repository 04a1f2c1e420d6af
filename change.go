package cart

// ChangeKind identifies what a cart mutation did.
type ChangeKind string

const (
	ChangeNone        ChangeKind = "none"
	ChangeAdded       ChangeKind = "added"
	ChangeIncremented ChangeKind = "incremented"
	ChangeDecremented ChangeKind = "decremented"
	ChangeRemoved     ChangeKind = "removed"
	ChangeCleared     ChangeKind = "cleared"
	ChangeRestored    ChangeKind = "restored"
)

// Change is returned by every cart mutation so callers can route persistence
// and rendering through a single place. Quantity is the line quantity after the
// mutation (zero once the line is gone); for cleared/restored changes it is the
// number of lines affected.
type Change struct {
	Kind     ChangeKind
	Name     string
	Quantity int
}

// Changed reports whether the mutation modified cart state.
func (c Change) Changed() bool {
	return c.Kind != "" && c.Kind != ChangeNone
}

func noChange(name string) Change {
	return Change{Kind: ChangeNone, Name: name}
}
