package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// All code reading and writing delimited files is here.

const sniffRows = 100

// FileSpec holds the knobs for delimited IO.
type FileSpec struct {
	Sep         rune
	FloatFormat string // fmt verb; "" means shortest round-trip form
}

type FileOpt func(*FileSpec)

func WithSep(sep rune) FileOpt { return func(f *FileSpec) { f.Sep = sep } }

func WithFloatFormat(format string) FileOpt { return func(f *FileSpec) { f.FloatFormat = format } }

func newFileSpec(opts ...FileOpt) *FileSpec {
	f := &FileSpec{Sep: ','}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// ReadCSV loads a delimited file into a Table.  A header row is required.
// Column types are sniffed from the first rows: int if every non-empty
// cell parses as an integer, float if every non-empty cell parses as a
// number, string otherwise.  Empty cells are missing.
func ReadCSV(fileName string, opts ...FileOpt) (*Table, error) {
	f, e := os.Open(fileName)
	if e != nil {
		return nil, e
	}
	defer func() { _ = f.Close() }()

	t, e := Read(f, opts...)
	if e != nil {
		return nil, fmt.Errorf("%s: %w", fileName, e)
	}

	return t, nil
}

func Read(r io.Reader, opts ...FileOpt) (*Table, error) {
	spec := newFileSpec(opts...)

	rdr := csv.NewReader(r)
	rdr.Comma = spec.Sep
	rdr.FieldsPerRecord = -1

	recs, e := rdr.ReadAll()
	if e != nil {
		return nil, e
	}

	if len(recs) < 1 {
		return nil, fmt.Errorf("file appears to be empty")
	}

	header := recs[0]
	rows := recs[1:]

	types := sniffTypes(header, rows)

	cols := make([]*Column, len(header))
	for j, name := range header {
		var (
			col *Column
			err error
		)

		if col, err = buildColumn(name, types[j], rows, j); err != nil {
			return nil, err
		}

		cols[j] = col
	}

	return NewTable(cols...)
}

// sniffTypes infers a type per column from up to sniffRows data rows.
func sniffTypes(header []string, rows [][]string) []DataTypes {
	types := make([]DataTypes, len(header))

	for j := range header {
		canInt, canFloat, obs := true, true, 0

		for i := 0; i < len(rows) && i < sniffRows; i++ {
			cell := cellAt(rows[i], j)
			if cell == "" {
				continue
			}

			obs++

			// fixed-width codes like "06001" stay strings
			if len(cell) > 1 && cell[0] == '0' && cell[1] != '.' {
				canInt, canFloat = false, false
				break
			}

			if _, e := strconv.Atoi(cell); e != nil {
				canInt = false
			}

			if _, e := strconv.ParseFloat(cell, 64); e != nil {
				canFloat = false
			}

			if !canInt && !canFloat {
				break
			}
		}

		switch {
		case obs > 0 && canInt:
			types[j] = DTint
		case obs > 0 && canFloat:
			types[j] = DTfloat
		default:
			types[j] = DTstring
		}
	}

	return types
}

func buildColumn(name string, dt DataTypes, rows [][]string, j int) (*Column, error) {
	n := len(rows)
	missing := make([]bool, n)

	switch dt {
	case DTint:
		data := make([]int, n)
		for i := range rows {
			cell := cellAt(rows[i], j)
			if cell == "" {
				missing[i] = true
				continue
			}

			v, e := strconv.Atoi(cell)
			if e != nil {
				// sniffed on a prefix; fall back for the whole column
				return buildColumn(name, DTfloat, rows, j)
			}

			data[i] = v
		}

		return NewColumn(name, data, missing)
	case DTfloat:
		data := make([]float64, n)
		for i := range rows {
			cell := cellAt(rows[i], j)
			if cell == "" {
				missing[i] = true
				continue
			}

			v, e := strconv.ParseFloat(cell, 64)
			if e != nil {
				return buildColumn(name, DTstring, rows, j)
			}

			data[i] = v
		}

		return NewColumn(name, data, missing)
	default:
		data := make([]string, n)
		for i := range rows {
			cell := cellAt(rows[i], j)
			if cell == "" {
				missing[i] = true
				continue
			}

			data[i] = cell
		}

		return NewColumn(name, data, missing)
	}
}

func cellAt(row []string, j int) string {
	if j >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[j])
}

// WriteCSV writes the table to fileName with a header row.  Missing cells
// become empty fields.
func WriteCSV(t *Table, fileName string, opts ...FileOpt) error {
	f, e := os.Create(fileName)
	if e != nil {
		return e
	}

	if e = Write(t, f, opts...); e != nil {
		_ = f.Close()
		return e
	}

	return f.Close()
}

func Write(t *Table, w io.Writer, opts ...FileOpt) error {
	spec := newFileSpec(opts...)

	wtr := csv.NewWriter(w)
	wtr.Comma = spec.Sep

	if e := wtr.Write(t.ColumnNames()); e != nil {
		return e
	}

	rec := make([]string, t.ColumnCount())
	for i := 0; i < t.RowCount(); i++ {
		for j, c := range t.cols {
			rec[j] = formatCell(c, i, spec)
		}

		if e := wtr.Write(rec); e != nil {
			return e
		}
	}

	wtr.Flush()

	return wtr.Error()
}

func formatCell(c *Column, row int, spec *FileSpec) string {
	if c.IsMissing(row) {
		return ""
	}

	switch c.DataType() {
	case DTfloat:
		v := c.data.([]float64)[row]
		if spec.FloatFormat != "" {
			return fmt.Sprintf(spec.FloatFormat, v)
		}

		return strconv.FormatFloat(v, 'f', -1, 64)
	case DTint:
		return strconv.Itoa(c.data.([]int)[row])
	default:
		return c.data.([]string)[row]
	}
}
