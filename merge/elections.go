package merge

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Jairaye/housing-preference-locator/frame"
)

const (
	partyDem = "DEMOCRAT"
	partyRep = "REPUBLICAN"
)

// loadElections reads the multi-year county presidential results file,
// keeps the target year, pivots party vote totals per county, and derives
// the two-party shares and lean score.  Third-party votes never enter the
// denominator.  A party fielding no candidate anywhere counts as zero
// votes everywhere.
func loadElections(fileName string, year int) (*frame.Table, error) {
	raw, e := frame.ReadCSV(fileName)
	if e != nil {
		return nil, e
	}

	yearCol, e := raw.Column("year")
	if e != nil {
		return nil, fmt.Errorf("%s: %w", fileName, e)
	}

	partyCol, e := raw.Column("party")
	if e != nil {
		return nil, fmt.Errorf("%s: %w", fileName, e)
	}

	votesCol, e := raw.Column("candidatevotes")
	if e != nil {
		return nil, fmt.Errorf("%s: %w", fileName, e)
	}

	fipsCol, e := intKey(raw, "county_fips")
	if e != nil {
		return nil, fmt.Errorf("%s: %w", fileName, e)
	}

	// pivot: county -> party -> total votes
	votes := make(map[int]map[string]float64)
	matched := 0
	for i := 0; i < raw.RowCount(); i++ {
		y, ok := yearCol.Float(i)
		if !ok || int(y) != year {
			continue
		}

		matched++

		if fipsCol.IsMissing(i) {
			continue
		}
		fips := fipsCol.Ints()[i]

		party, _ := partyCol.Element(i).(string)
		if party == "" {
			continue
		}

		v, _ := votesCol.Float(i) // missing vote counts add zero

		if votes[fips] == nil {
			votes[fips] = make(map[string]float64)
		}
		votes[fips][strings.ToUpper(party)] += v
	}

	if matched == 0 {
		return nil, fmt.Errorf("%s: no election records for year %d", fileName, year)
	}

	keys := make([]int, 0, len(votes))
	for k := range votes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	n := len(keys)
	demPct := make([]float64, n)
	repPct := make([]float64, n)
	lean := make([]float64, n)
	missing := make([]bool, n)

	for i, k := range keys {
		dem, rep := votes[k][partyDem], votes[k][partyRep]
		total := dem + rep

		if total == 0 {
			missing[i] = true
			continue
		}

		demPct[i] = round1(dem / total * 100)
		repPct[i] = round1(rep / total * 100)
		lean[i] = round1(demPct[i] - repPct[i])
	}

	fips, _ := frame.NewColumn("county_fips", keys, nil)
	d, _ := frame.NewColumn("dem_pct", demPct, append([]bool(nil), missing...))
	r, _ := frame.NewColumn("rep_pct", repPct, append([]bool(nil), missing...))
	l, _ := frame.NewColumn("lean_score", lean, append([]bool(nil), missing...))

	return frame.NewTable(fips, d, r, l)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
