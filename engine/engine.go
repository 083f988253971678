// Package engine answers dashboard queries against the merged county
// table: interactive filters, summary statistics, render-ready table and
// chart data, and CSV export.  It never renders anything itself; the
// contract with the presentation layer is the merged table's column names
// and value domains.
package engine

import (
	"fmt"
	"strings"

	"github.com/Jairaye/housing-preference-locator/frame"
)

// BedroomType selects which home-value column a query runs against.
type BedroomType string

const (
	AllHomes    BedroomType = "all"
	FourBedroom BedroomType = "4br"
	FiveBedroom BedroomType = "5br"
)

func (b BedroomType) ValueColumn() string {
	switch b {
	case FourBedroom:
		return "median_home_value_4br"
	case FiveBedroom:
		return "median_home_value_5br"
	default:
		return "median_home_value_all"
	}
}

func (b BedroomType) FormattedColumn() string { return b.ValueColumn() + "_formatted" }

func (b BedroomType) Label() string {
	switch b {
	case FourBedroom:
		return "4 Bedrooms"
	case FiveBedroom:
		return "5+ Bedrooms"
	default:
		return "All Homes"
	}
}

// Bedrooms lists the bedroom types the table carries columns for.  The
// optional 4BR/5BR columns exist only when their sources were available
// at merge time.
func Bedrooms(t *frame.Table) []BedroomType {
	out := []BedroomType{AllHomes}
	if t.HasColumn(FourBedroom.ValueColumn()) {
		out = append(out, FourBedroom)
	}
	if t.HasColumn(FiveBedroom.ValueColumn()) {
		out = append(out, FiveBedroom)
	}

	return out
}

// Filter holds one dashboard query.  Zero values mean "no restriction":
// empty sets pass everything, zero ranges are unbounded.  Set filters on
// columns the table does not carry are ignored, matching a dashboard that
// never offered the control.
type Filter struct {
	Bedrooms BedroomType

	PriceMin, PriceMax float64

	Leans             []string
	GunStrengths      []string
	MarijuanaStatuses []string
	ExoticRatings     []string

	// species flags: Yes/Limited pass for primates and big cats,
	// Yes only for reptiles
	Primates bool
	BigCats  bool
	Reptiles bool

	PopulationMin, PopulationMax float64

	States []string
}

// View is a set of row indices into the merged table; no column data is
// copied until Table is called.
type View struct {
	tbl  *frame.Table
	rows []int
}

func (v View) Len() int { return len(v.rows) }

func (v View) Rows() []int { return v.rows }

// Table materializes the view as its own table.
func (v View) Table() *frame.Table { return v.tbl.Select(v.rows) }

// All returns a view over every row of t.
func All(t *frame.Table) View {
	rows := make([]int, t.RowCount())
	for i := range rows {
		rows[i] = i
	}

	return View{tbl: t, rows: rows}
}

// Apply evaluates the filter in a single pass over the table.  Rows
// missing the chosen bedroom value are always excluded.
func (f Filter) Apply(t *frame.Table) (View, error) {
	price, e := t.Column(f.Bedrooms.ValueColumn())
	if e != nil {
		return View{}, fmt.Errorf("engine: %w", e)
	}

	type setCheck struct {
		col *frame.Column
		set map[string]bool
	}

	var sets []setCheck
	for _, sc := range []struct {
		column string
		values []string
	}{
		{"political_lean", f.Leans},
		{"gun_law_strength", f.GunStrengths},
		{"marijuana_status", f.MarijuanaStatuses},
		{"exotic_animal_rating", f.ExoticRatings},
		{"state_name", f.States},
	} {
		if len(sc.values) == 0 || !t.HasColumn(sc.column) {
			continue
		}

		col, _ := t.Column(sc.column)
		sets = append(sets, setCheck{col: col, set: lowerSet(sc.values)})
	}

	var species []setCheck
	for _, sp := range []struct {
		on      bool
		column  string
		allowed []string
	}{
		{f.Primates, "allows_primates", []string{"Yes", "Limited"}},
		{f.BigCats, "allows_big_cats", []string{"Yes", "Limited"}},
		{f.Reptiles, "allows_reptiles", []string{"Yes"}},
	} {
		if !sp.on || !t.HasColumn(sp.column) {
			continue
		}

		col, _ := t.Column(sp.column)
		species = append(species, setCheck{col: col, set: lowerSet(sp.allowed)})
	}

	var pop *frame.Column
	if (f.PopulationMin > 0 || f.PopulationMax > 0) && t.HasColumn("population") {
		pop, _ = t.Column("population")
	}

	var rows []int
	for i := 0; i < t.RowCount(); i++ {
		v, ok := price.Float(i)
		if !ok {
			continue
		}

		if f.PriceMin > 0 && v < f.PriceMin {
			continue
		}
		if f.PriceMax > 0 && v > f.PriceMax {
			continue
		}

		if pop != nil {
			p, okp := pop.Float(i)
			if !okp {
				continue
			}
			if f.PopulationMin > 0 && p < f.PopulationMin {
				continue
			}
			if f.PopulationMax > 0 && p > f.PopulationMax {
				continue
			}
		}

		pass := true
		for _, sc := range append(sets, species...) {
			s, _ := sc.col.Element(i).(string)
			if !sc.set[strings.ToLower(s)] {
				pass = false
				break
			}
		}

		if pass {
			rows = append(rows, i)
		}
	}

	return View{tbl: t, rows: rows}, nil
}

func lowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}

	return set
}
