// Package frame implements a small typed column table used by the merge
// pipeline and the dashboard engine.  Columns hold float, int or string
// slices plus a per-cell missing mask.
package frame

import (
	"fmt"
	"sort"
)

// DataTypes are the column types the package supports.
type DataTypes uint8

const (
	DTunknown DataTypes = iota
	DTfloat
	DTint
	DTstring
)

func (dt DataTypes) String() string {
	switch dt {
	case DTfloat:
		return "float"
	case DTint:
		return "int"
	case DTstring:
		return "string"
	default:
		return "unknown"
	}
}

// Column is a named, typed vector with a missing mask.  The mask is the
// source of truth for missingness; the backing slice holds zero values at
// missing positions.
type Column struct {
	name    string
	dType   DataTypes
	data    any
	missing []bool
}

// NewColumn builds a column from a slice of float64, int or string.
// A nil mask means no missing values.
func NewColumn(name string, data any, missing []bool) (*Column, error) {
	var (
		dt DataTypes
		n  int
	)

	switch d := data.(type) {
	case []float64:
		dt, n = DTfloat, len(d)
	case []int:
		dt, n = DTint, len(d)
	case []string:
		dt, n = DTstring, len(d)
	default:
		return nil, fmt.Errorf("unsupported data type in NewColumn for %s", name)
	}

	if missing != nil && len(missing) != n {
		return nil, fmt.Errorf("column %s: mask length %d != data length %d", name, len(missing), n)
	}

	if missing == nil {
		missing = make([]bool, n)
	}

	return &Column{name: name, dType: dt, data: data, missing: missing}, nil
}

func (c *Column) Name() string { return c.name }

// Rename sets the column name and returns the column.
func (c *Column) Rename(to string) *Column {
	c.name = to
	return c
}

func (c *Column) DataType() DataTypes { return c.dType }

func (c *Column) Len() int {
	switch c.dType {
	case DTfloat:
		return len(c.data.([]float64))
	case DTint:
		return len(c.data.([]int))
	case DTstring:
		return len(c.data.([]string))
	default:
		return 0
	}
}

func (c *Column) IsMissing(row int) bool { return c.missing[row] }

// Element returns the value at row, or nil when the cell is missing.
func (c *Column) Element(row int) any {
	if c.missing[row] {
		return nil
	}

	switch c.dType {
	case DTfloat:
		return c.data.([]float64)[row]
	case DTint:
		return c.data.([]int)[row]
	case DTstring:
		return c.data.([]string)[row]
	default:
		panic(fmt.Errorf("unsupported data type in Element"))
	}
}

// Floats returns the backing slice of a float column.  Panics on a
// type mismatch -- callers check DataType first.
func (c *Column) Floats() []float64 {
	if c.dType != DTfloat {
		panic(fmt.Errorf("column %s is %v, not float", c.name, c.dType))
	}

	return c.data.([]float64)
}

func (c *Column) Ints() []int {
	if c.dType != DTint {
		panic(fmt.Errorf("column %s is %v, not int", c.name, c.dType))
	}

	return c.data.([]int)
}

func (c *Column) Strings() []string {
	if c.dType != DTstring {
		panic(fmt.Errorf("column %s is %v, not string", c.name, c.dType))
	}

	return c.data.([]string)
}

// Float converts the value at row to float64 regardless of the column's
// numeric type.  ok is false for missing cells and string columns.
func (c *Column) Float(row int) (v float64, ok bool) {
	if c.missing[row] {
		return 0, false
	}

	switch c.dType {
	case DTfloat:
		return c.data.([]float64)[row], true
	case DTint:
		return float64(c.data.([]int)[row]), true
	default:
		return 0, false
	}
}

func (c *Column) Copy() *Column {
	n := c.Len()

	var data any
	switch c.dType {
	case DTfloat:
		d := make([]float64, n)
		copy(d, c.data.([]float64))
		data = d
	case DTint:
		d := make([]int, n)
		copy(d, c.data.([]int))
		data = d
	case DTstring:
		d := make([]string, n)
		copy(d, c.data.([]string))
		data = d
	default:
		panic(fmt.Errorf("unsupported data type in Copy"))
	}

	missing := make([]bool, n)
	copy(missing, c.missing)

	return &Column{name: c.name, dType: c.dType, data: data, missing: missing}
}

// take builds a new column from the given row indices.
func (c *Column) take(rows []int) *Column {
	missing := make([]bool, len(rows))
	for ind, r := range rows {
		missing[ind] = c.missing[r]
	}

	var data any
	switch c.dType {
	case DTfloat:
		src := c.data.([]float64)
		d := make([]float64, len(rows))
		for ind, r := range rows {
			d[ind] = src[r]
		}
		data = d
	case DTint:
		src := c.data.([]int)
		d := make([]int, len(rows))
		for ind, r := range rows {
			d[ind] = src[r]
		}
		data = d
	case DTstring:
		src := c.data.([]string)
		d := make([]string, len(rows))
		for ind, r := range rows {
			d[ind] = src[r]
		}
		data = d
	default:
		panic(fmt.Errorf("unsupported data type in take"))
	}

	return &Column{name: c.name, dType: c.dType, data: data, missing: missing}
}

// less orders rows i,j within the column; missing values sort last.
func (c *Column) less(i, j int) bool {
	if c.missing[i] || c.missing[j] {
		return !c.missing[i] && c.missing[j]
	}

	switch c.dType {
	case DTfloat:
		return c.data.([]float64)[i] < c.data.([]float64)[j]
	case DTint:
		return c.data.([]int)[i] < c.data.([]int)[j]
	case DTstring:
		return c.data.([]string)[i] < c.data.([]string)[j]
	default:
		panic(fmt.Errorf("unsupported data type in less"))
	}
}

func (c *Column) equal(i, j int) bool {
	if c.missing[i] || c.missing[j] {
		return c.missing[i] == c.missing[j]
	}

	return !c.less(i, j) && !c.less(j, i)
}

///////////// Table

// Table is an ordered set of equal-length columns.
type Table struct {
	cols []*Column
}

func NewTable(cols ...*Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns in NewTable")
	}

	n := cols[0].Len()
	seen := make(map[string]bool)
	for _, c := range cols {
		if c.Len() != n {
			return nil, fmt.Errorf("length mismatch: %s has %d rows, want %d", c.Name(), c.Len(), n)
		}

		if seen[c.Name()] {
			return nil, fmt.Errorf("duplicate column name: %s", c.Name())
		}
		seen[c.Name()] = true
	}

	return &Table{cols: cols}, nil
}

func (t *Table) RowCount() int { return t.cols[0].Len() }

func (t *Table) ColumnCount() int { return len(t.cols) }

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for ind, c := range t.cols {
		names[ind] = c.Name()
	}

	return names
}

func (t *Table) HasColumn(name string) bool {
	for _, c := range t.cols {
		if c.Name() == name {
			return true
		}
	}

	return false
}

func (t *Table) Column(name string) (*Column, error) {
	for _, c := range t.cols {
		if c.Name() == name {
			return c, nil
		}
	}

	return nil, fmt.Errorf("column %s not found", name)
}

func (t *Table) AppendColumn(col *Column) error {
	if t.HasColumn(col.Name()) {
		return fmt.Errorf("duplicate column name: %s", col.Name())
	}

	if col.Len() != t.RowCount() {
		return fmt.Errorf("length mismatch: table - %d, append col - %d", t.RowCount(), col.Len())
	}

	t.cols = append(t.cols, col)

	return nil
}

func (t *Table) DropColumns(names ...string) error {
	for _, name := range names {
		found := -1
		for ind, c := range t.cols {
			if c.Name() == name {
				found = ind
				break
			}
		}

		if found < 0 {
			return fmt.Errorf("column %s not found", name)
		}

		if len(t.cols) == 1 {
			return fmt.Errorf("no columns left")
		}

		t.cols = append(t.cols[:found], t.cols[found+1:]...)
	}

	return nil
}

// KeepColumns returns a new table holding the named columns, in the order
// given.  Columns are shared, not copied.
func (t *Table) KeepColumns(names ...string) (*Table, error) {
	var keep []*Column
	for _, name := range names {
		c, e := t.Column(name)
		if e != nil {
			return nil, e
		}

		keep = append(keep, c)
	}

	return NewTable(keep...)
}

// Select builds a new table from the given row indices.
func (t *Table) Select(rows []int) *Table {
	cols := make([]*Column, len(t.cols))
	for ind, c := range t.cols {
		cols[ind] = c.take(rows)
	}

	return &Table{cols: cols}
}

// Sort orders the table by the given key columns, ascending, missing last.
func (t *Table) Sort(keys ...string) error {
	var by []*Column
	for _, k := range keys {
		c, e := t.Column(k)
		if e != nil {
			return e
		}

		by = append(by, c)
	}

	perm := make([]int, t.RowCount())
	for ind := range perm {
		perm[ind] = ind
	}

	sort.SliceStable(perm, func(i, j int) bool {
		for _, c := range by {
			if c.equal(perm[i], perm[j]) {
				continue
			}

			return c.less(perm[i], perm[j])
		}

		return false
	})

	sorted := t.Select(perm)
	t.cols = sorted.cols

	return nil
}
