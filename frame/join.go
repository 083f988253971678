package frame

import "fmt"

// LeftJoin joins columns of right onto left using the key column present
// in both tables under the same name.  Every left row is preserved;
// unmatched rows get missing values for the joined columns.  When right
// holds duplicate keys the first occurrence wins.  Rows of right with a
// missing key never match.
func LeftJoin(left, right *Table, key string, cols ...string) (*Table, error) {
	lk, e := left.Column(key)
	if e != nil {
		return nil, fmt.Errorf("left join: %w", e)
	}

	rk, e := right.Column(key)
	if e != nil {
		return nil, fmt.Errorf("left join: %w", e)
	}

	if lk.DataType() != rk.DataType() {
		return nil, fmt.Errorf("left join on %s: key types differ (%v vs %v)", key, lk.DataType(), rk.DataType())
	}

	match, e := matchRows(lk, rk)
	if e != nil {
		return nil, e
	}

	out := make([]*Column, 0, left.ColumnCount()+len(cols))
	out = append(out, left.cols...)

	for _, name := range cols {
		rc, ex := right.Column(name)
		if ex != nil {
			return nil, fmt.Errorf("left join: %w", ex)
		}

		out = append(out, gather(rc, match))
	}

	return NewTable(out...)
}

// matchRows returns, for each left row, the matching right row or -1.
func matchRows(lk, rk *Column) ([]int, error) {
	match := make([]int, lk.Len())

	switch lk.DataType() {
	case DTint:
		lookup := make(map[int]int, rk.Len())
		keys := rk.Ints()
		for i := rk.Len() - 1; i >= 0; i-- {
			if !rk.IsMissing(i) {
				lookup[keys[i]] = i
			}
		}

		lkeys := lk.Ints()
		for i := range match {
			match[i] = -1
			if lk.IsMissing(i) {
				continue
			}

			if r, ok := lookup[lkeys[i]]; ok {
				match[i] = r
			}
		}
	case DTstring:
		lookup := make(map[string]int, rk.Len())
		keys := rk.Strings()
		for i := rk.Len() - 1; i >= 0; i-- {
			if !rk.IsMissing(i) {
				lookup[keys[i]] = i
			}
		}

		lkeys := lk.Strings()
		for i := range match {
			match[i] = -1
			if lk.IsMissing(i) {
				continue
			}

			if r, ok := lookup[lkeys[i]]; ok {
				match[i] = r
			}
		}
	default:
		return nil, fmt.Errorf("left join: unsupported key type %v", lk.DataType())
	}

	return match, nil
}

// gather builds the joined column: value at the matched right row, or
// missing when match is -1.
func gather(c *Column, match []int) *Column {
	n := len(match)
	missing := make([]bool, n)

	var data any
	switch c.DataType() {
	case DTfloat:
		src := c.Floats()
		d := make([]float64, n)
		for i, r := range match {
			if r < 0 || c.IsMissing(r) {
				missing[i] = true
				continue
			}
			d[i] = src[r]
		}
		data = d
	case DTint:
		src := c.Ints()
		d := make([]int, n)
		for i, r := range match {
			if r < 0 || c.IsMissing(r) {
				missing[i] = true
				continue
			}
			d[i] = src[r]
		}
		data = d
	case DTstring:
		src := c.Strings()
		d := make([]string, n)
		for i, r := range match {
			if r < 0 || c.IsMissing(r) {
				missing[i] = true
				continue
			}
			d[i] = src[r]
		}
		data = d
	default:
		panic(fmt.Errorf("unsupported data type in gather"))
	}

	col, _ := NewColumn(c.Name(), data, missing)

	return col
}
