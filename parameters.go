package bayesx

import "strings"

// ParameterLedger holds the ordered parameter definitions of a session. It
// always ends in exactly one placeholder row so a renderer has somewhere to
// type the next parameter.
//
// Rows are only ever added (by the ledger itself) or edited in place. Edits
// addressing an unknown id are ignored.
//
// A ParameterLedger is not safe for concurrent use; the Session serialises
// access to it.
type ParameterLedger struct {
	rows []ParameterDefinition

	// lastID is the highest id ever assigned.
	lastID int
}

//////
// Methods.
//////

// EditName sets the name of the row with the given id and returns the new
// ledger contents.
func (l *ParameterLedger) EditName(id int, name string) []ParameterDefinition {
	return l.edit(id, func(row *ParameterDefinition) {
		row.Name = name
	})
}

// EditMin sets the lower bound of the row with the given id and returns the
// new ledger contents.
func (l *ParameterLedger) EditMin(id int, min float64) []ParameterDefinition {
	return l.edit(id, func(row *ParameterDefinition) {
		row.Min = min
	})
}

// EditMax sets the upper bound of the row with the given id and returns the
// new ledger contents.
func (l *ParameterLedger) EditMax(id int, max float64) []ParameterDefinition {
	return l.edit(id, func(row *ParameterDefinition) {
		row.Max = max
	})
}

// Rows returns a copy of every row, placeholder included.
func (l *ParameterLedger) Rows() []ParameterDefinition {
	out := make([]ParameterDefinition, len(l.rows))
	copy(out, l.rows)

	return out
}

// ActiveParameters returns the rows whose trimmed name is non-empty, in
// ledger order. This is the view the rest of the system treats as "the
// parameters".
func (l *ParameterLedger) ActiveParameters() []ParameterDefinition {
	return filterActive(l.rows)
}

// Len returns the number of rows, placeholder included.
func (l *ParameterLedger) Len() int {
	return len(l.rows)
}

func (l *ParameterLedger) edit(id int, apply func(*ParameterDefinition)) []ParameterDefinition {
	for i := range l.rows {
		if l.rows[i].ID == id {
			apply(&l.rows[i])

			break
		}
	}

	l.normalize()

	return l.Rows()
}

// normalize restores the tail invariant: exactly one blank row, last.
func (l *ParameterLedger) normalize() {
	// A row cleared back to blank right before the placeholder takes over as
	// the placeholder.
	for len(l.rows) >= 2 && isBlankRow(l.rows[len(l.rows)-1]) && isBlankRow(l.rows[len(l.rows)-2]) {
		l.rows = l.rows[:len(l.rows)-1]
	}

	if len(l.rows) == 0 || !isBlankRow(l.rows[len(l.rows)-1]) {
		l.appendPlaceholder()
	}
}

func (l *ParameterLedger) appendPlaceholder() {
	l.lastID++

	l.rows = append(l.rows, ParameterDefinition{ID: l.lastID})
}

func filterActive(rows []ParameterDefinition) []ParameterDefinition {
	active := make([]ParameterDefinition, 0, len(rows))

	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}

		active = append(active, row)
	}

	return active
}

// isBlankRow reports whether a row is a placeholder: no name and no bounds.
func isBlankRow(row ParameterDefinition) bool {
	return row.Name == "" && isBlankBound(row.Min) && isBlankBound(row.Max)
}

//////
// Factory.
//////

// NewParameterLedger returns a ledger holding a single placeholder row with
// id 1.
func NewParameterLedger() *ParameterLedger {
	l := &ParameterLedger{}

	l.appendPlaceholder()

	return l
}
