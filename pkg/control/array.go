package control

import (
	"fmt"

	"github.com/goliatone/go-formtree/pkg/formconfig"
)

// Array holds ordered rows built from the single attribute of an array spec.
type Array struct {
	nodeState
	item    *formconfig.AttributeSpec
	rows    []Node
	builder *Builder
}

// Item returns the attribute every row is built from.
func (a *Array) Item() *formconfig.AttributeSpec { return a.item }

// Len returns the number of rows.
func (a *Array) Len() int { return len(a.rows) }

// Row returns the row at index i.
func (a *Array) Row(i int) (Node, bool) {
	if i < 0 || i >= len(a.rows) {
		return nil, false
	}
	return a.rows[i], true
}

// Rows returns the rows in order.
func (a *Array) Rows() []Node { return append([]Node(nil), a.rows...) }

// Value returns the row values in order.
func (a *Array) Value() any {
	out := make([]any, len(a.rows))
	for i, row := range a.rows {
		out[i] = row.Value()
	}
	return out
}

// AppendRow builds a fresh row from the item spec and appends it.
func (a *Array) AppendRow() (Node, error) {
	if a.builder == nil {
		return nil, ErrNoBuilder
	}
	row, err := a.builder.Row(a.item)
	if err != nil {
		return nil, err
	}
	a.rows = append(a.rows, row)
	a.dirty = true
	return row, nil
}

// RemoveRow deletes the row at index i.
func (a *Array) RemoveRow(i int) error {
	if i < 0 || i >= len(a.rows) {
		return fmt.Errorf("%w: %d", ErrRowOutOfRange, i)
	}
	a.rows = append(a.rows[:i], a.rows[i+1:]...)
	a.dirty = true
	return nil
}

// Resize grows the array with built rows or drops rows from the tail until it
// holds exactly n rows.
func (a *Array) Resize(n int) error {
	if n < 0 {
		n = 0
	}
	if n < len(a.rows) {
		a.rows = a.rows[:n]
		return nil
	}
	for len(a.rows) < n {
		if a.builder == nil {
			return ErrNoBuilder
		}
		row, err := a.builder.Row(a.item)
		if err != nil {
			return err
		}
		a.rows = append(a.rows, row)
	}
	return nil
}

// Dirty reports whether the array or any row is dirty.
func (a *Array) Dirty() bool {
	if a.dirty {
		return true
	}
	for _, row := range a.rows {
		if row.Dirty() {
			return true
		}
	}
	return false
}

// Valid reports whether the array and every row are valid.
func (a *Array) Valid() bool {
	if len(a.errors) > 0 {
		return false
	}
	for _, row := range a.rows {
		if !row.Valid() {
			return false
		}
	}
	return true
}

// Validate runs the row validators and then the array's own validators.
func (a *Array) Validate() map[string]string {
	for _, row := range a.rows {
		row.Validate()
	}
	return runValidators(a)
}
