package engine

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/Jairaye/housing-preference-locator/frame"
)

// TableView is render-ready tabular data for the dashboard.
type TableView struct {
	Columns []string
	Rows    [][]string
}

// displayColumn maps a dashboard column header to its source column.
type displayColumn struct {
	header string
	source string
}

func displayColumns(t *frame.Table, b BedroomType) []displayColumn {
	cols := []displayColumn{
		{"County", "county_name"},
		{"State", "state_code"},
		{b.Label() + " Value", b.FormattedColumn()},
		{"Population", "population"},
		{"Political Lean", "political_lean"},
		{"Gun Grade", "gun_law_grade"},
		{"Lean Score", "lean_score"},
	}

	if t.HasColumn("marijuana_status") {
		cols = append(cols, displayColumn{"Marijuana", "marijuana_status"})
	}

	if t.HasColumn("exotic_animal_rating") {
		cols = append(cols, displayColumn{"Exotic Pets", "exotic_animal_rating"})
	}

	return cols
}

// BuildTable renders a view as display rows, sorted by the named display
// column.  Numeric columns sort on their values, not their display form.
func BuildTable(v View, b BedroomType, sortBy string, ascending bool) (TableView, error) {
	cols := displayColumns(v.tbl, b)

	var sortCol *displayColumn
	for i := range cols {
		if cols[i].header == sortBy {
			sortCol = &cols[i]
			break
		}
	}

	if sortBy != "" && sortCol == nil {
		return TableView{}, fmt.Errorf("engine: no display column %q", sortBy)
	}

	rows := append([]int(nil), v.rows...)
	if sortCol != nil {
		source := sortCol.source
		if sortCol.source == b.FormattedColumn() {
			source = b.ValueColumn() // sort prices numerically
		}

		if e := sortRows(v.tbl, rows, source, ascending); e != nil {
			return TableView{}, e
		}
	}

	out := TableView{}
	for _, c := range cols {
		out.Columns = append(out.Columns, c.header)
	}

	for _, r := range rows {
		rec := make([]string, len(cols))
		for j, c := range cols {
			rec[j] = cellString(v.tbl, c.source, r)
		}

		out.Rows = append(out.Rows, rec)
	}

	return out, nil
}

// TopAffordable returns the n cheapest counties for the bedroom type.
func TopAffordable(v View, b BedroomType, n int) (TableView, error) {
	t, e := BuildTable(v, b, b.Label()+" Value", true)
	if e != nil {
		return TableView{}, e
	}

	if len(t.Rows) > n {
		t.Rows = t.Rows[:n]
	}

	return t, nil
}

// ScatterPoint is one dot of the price-vs-population chart.
type ScatterPoint struct {
	County     string
	Population float64
	Price      float64
	Lean       string
}

// ScatterData produces the price-vs-population series; rows missing
// either measure are dropped.
func ScatterData(v View, b BedroomType) []ScatterPoint {
	price, e := v.tbl.Column(b.ValueColumn())
	if e != nil {
		return nil
	}

	pop, e := v.tbl.Column("population")
	if e != nil {
		return nil
	}

	name, _ := v.tbl.Column("county_name")
	lean, _ := v.tbl.Column("political_lean")

	var out []ScatterPoint
	for _, r := range v.rows {
		pr, ok1 := price.Float(r)
		po, ok2 := pop.Float(r)
		if !ok1 || !ok2 {
			continue
		}

		pt := ScatterPoint{Population: po, Price: pr}
		if name != nil {
			pt.County, _ = name.Element(r).(string)
		}
		if lean != nil {
			pt.Lean, _ = lean.Element(r).(string)
		}

		out = append(out, pt)
	}

	return out
}

// MapPoint feeds the state-scoped map view.
type MapPoint struct {
	State      string
	County     string
	Price      float64
	Population float64
}

func MapData(v View, b BedroomType) []MapPoint {
	price, e := v.tbl.Column(b.ValueColumn())
	if e != nil {
		return nil
	}

	state, e := v.tbl.Column("state_code")
	if e != nil {
		return nil
	}

	name, _ := v.tbl.Column("county_name")
	pop, _ := v.tbl.Column("population")

	var out []MapPoint
	for _, r := range v.rows {
		pr, ok := price.Float(r)
		if !ok {
			continue
		}

		pt := MapPoint{Price: pr}
		pt.State, _ = state.Element(r).(string)
		if name != nil {
			pt.County, _ = name.Element(r).(string)
		}
		if pop != nil {
			pt.Population, _ = pop.Float(r)
		}

		out = append(out, pt)
	}

	return out
}

// ExportCSV writes the filtered subset, all columns, as CSV.
func ExportCSV(v View, w io.Writer) error {
	return frame.Write(v.Table(), w)
}

// sortRows orders row indices by one column, missing last.
func sortRows(t *frame.Table, rows []int, column string, ascending bool) error {
	col, e := t.Column(column)
	if e != nil {
		return e
	}

	less := func(i, j int) bool {
		switch col.DataType() {
		case frame.DTfloat:
			return col.Floats()[i] < col.Floats()[j]
		case frame.DTint:
			return col.Ints()[i] < col.Ints()[j]
		default:
			return col.Strings()[i] < col.Strings()[j]
		}
	}

	sort.SliceStable(rows, func(a, b int) bool {
		i, j := rows[a], rows[b]

		// missing sorts last in either direction
		if col.IsMissing(i) || col.IsMissing(j) {
			return !col.IsMissing(i) && col.IsMissing(j)
		}

		if ascending {
			return less(i, j)
		}

		return less(j, i)
	})

	return nil
}

func cellString(t *frame.Table, column string, row int) string {
	col, e := t.Column(column)
	if e != nil {
		return ""
	}

	switch v := col.Element(row).(type) {
	case nil:
		return "N/A"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	default:
		return ""
	}
}
