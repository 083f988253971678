package merge

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Jairaye/housing-preference-locator/frame"
)

// Source loaders.  Each loader reads one published dataset and normalizes
// it to the common join keys: county_fips (int) for county-level sources,
// state_code (2-letter postal) for state-level sources.

// month column headers are recognized by a leading 4-digit year and
// parsed with one of these layouts.
var monthFormats = []string{"2006-01-02", "2006-01", "2006/01/02", "20060102"}

// codeString zero-pads a FIPS component to the given width.  Source files
// carry these as numbers or fixed-width strings interchangeably.
func codeString(cell any, width int) (string, error) {
	var n int

	switch v := cell.(type) {
	case nil:
		return "", fmt.Errorf("missing code")
	case int:
		n = v
	case float64:
		n = int(v)
	case string:
		var e error
		if n, e = strconv.Atoi(strings.TrimSpace(v)); e != nil {
			return "", fmt.Errorf("bad code %q", v)
		}
	default:
		return "", fmt.Errorf("bad code type %T", cell)
	}

	if n < 0 || len(strconv.Itoa(n)) > width {
		return "", fmt.Errorf("code %d wider than %d digits", n, width)
	}

	return fmt.Sprintf("%0*d", width, n), nil
}

// fipsKey concatenates zero-padded state (2) and county (3) codes.
// Padding before concatenation keeps state 1 county 1 (01001) distinct
// from state 10 county 1 (10001).
func fipsKey(stateCell, countyCell any) (int, error) {
	s, e := codeString(stateCell, 2)
	if e != nil {
		return 0, e
	}

	c, e := codeString(countyCell, 3)
	if e != nil {
		return 0, e
	}

	return strconv.Atoi(s + c)
}

// latestMonthColumn picks the month column with the greatest parsed date.
// Headers are parsed rather than trusted to be in chronological order.
func latestMonthColumn(names []string) (string, error) {
	var (
		best     string
		bestDate time.Time
		found    bool
	)

	for _, name := range names {
		if !hasYearPrefix(name) {
			continue
		}

		for _, layout := range monthFormats {
			d, e := time.Parse(layout, name)
			if e != nil {
				continue
			}

			if !found || !d.Before(bestDate) {
				best, bestDate, found = name, d, true
			}

			break
		}
	}

	if !found {
		return "", fmt.Errorf("no month columns found")
	}

	return best, nil
}

func hasYearPrefix(name string) bool {
	if len(name) < 4 {
		return false
	}

	for _, r := range name[:4] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// intKey rebuilds the named column as an int join key, converting float
// and digit-string cells.  Unconvertible cells become missing.
func intKey(t *frame.Table, name string) (*frame.Column, error) {
	c, e := t.Column(name)
	if e != nil {
		return nil, e
	}

	n := c.Len()
	data := make([]int, n)
	missing := make([]bool, n)

	for i := 0; i < n; i++ {
		switch v := c.Element(i).(type) {
		case nil:
			missing[i] = true
		case int:
			data[i] = v
		case float64:
			data[i] = int(v)
		case string:
			k, ex := strconv.Atoi(strings.TrimSpace(v))
			if ex != nil {
				missing[i] = true
				continue
			}
			data[i] = k
		}
	}

	return frame.NewColumn(name, data, missing)
}

// loadHousing reads a ZHVI county file and returns county_fips,
// county_name, state_name, state_code and the latest month's value under
// valueName.
func loadHousing(fileName, valueName string) (*frame.Table, error) {
	raw, e := frame.ReadCSV(fileName)
	if e != nil {
		return nil, e
	}

	stateCodes, e := raw.Column("StateCodeFIPS")
	if e != nil {
		return nil, fmt.Errorf("%s: %w", fileName, e)
	}

	munCodes, e := raw.Column("MunicipalCodeFIPS")
	if e != nil {
		return nil, fmt.Errorf("%s: %w", fileName, e)
	}

	monthName, e := latestMonthColumn(raw.ColumnNames())
	if e != nil {
		return nil, fmt.Errorf("%s: %w", fileName, e)
	}

	month, _ := raw.Column(monthName)

	n := raw.RowCount()
	fips := make([]int, n)
	fipsMissing := make([]bool, n)
	value := make([]float64, n)
	valueMissing := make([]bool, n)

	for i := 0; i < n; i++ {
		k, ex := fipsKey(stateCodes.Element(i), munCodes.Element(i))
		if ex != nil {
			fipsMissing[i] = true
		} else {
			fips[i] = k
		}

		v, ok := month.Float(i)
		if !ok {
			valueMissing[i] = true
		} else {
			value[i] = v
		}
	}

	fipsCol, _ := frame.NewColumn("county_fips", fips, fipsMissing)
	valueCol, _ := frame.NewColumn(valueName, value, valueMissing)

	out, e := frame.NewTable(fipsCol)
	if e != nil {
		return nil, e
	}

	for from, to := range map[string]string{
		"RegionName": "county_name",
		"StateName":  "state_name",
		"State":      "state_code",
	} {
		c, ex := raw.Column(from)
		if ex != nil {
			return nil, fmt.Errorf("%s: %w", fileName, ex)
		}

		if ex = out.AppendColumn(c.Copy().Rename(to)); ex != nil {
			return nil, ex
		}
	}

	if e = out.AppendColumn(valueCol); e != nil {
		return nil, e
	}

	// column order is part of the output contract
	return out.KeepColumns("county_fips", "county_name", "state_name", "state_code", valueName)
}

// loadHousingValues is the bedroom-count variant: key plus value only.
func loadHousingValues(fileName, valueName string) (*frame.Table, error) {
	t, e := loadHousing(fileName, valueName)
	if e != nil {
		return nil, e
	}

	return t.KeepColumns("county_fips", valueName)
}

// loadGunLaws reads the state gun-law scorecard.
func loadGunLaws(fileName string) (*frame.Table, error) {
	raw, e := frame.ReadCSV(fileName)
	if e != nil {
		return nil, e
	}

	return raw.KeepColumns("state_code", "gun_law_grade", "gun_death_rate")
}

// loadPopulation reads county population estimates keyed by county_fips.
func loadPopulation(fileName string) (*frame.Table, error) {
	raw, e := frame.ReadCSV(fileName)
	if e != nil {
		return nil, e
	}

	t, e := raw.KeepColumns("county_fips", "population")
	if e != nil {
		return nil, e
	}

	key, e := intKey(t, "county_fips")
	if e != nil {
		return nil, e
	}

	if e = t.DropColumns("county_fips"); e != nil {
		return nil, e
	}
	if e = t.AppendColumn(key); e != nil {
		return nil, e
	}

	return t.KeepColumns("county_fips", "population")
}

// loadExoticAnimals reads the state exotic-animal law table (optional source).
func loadExoticAnimals(fileName string) (*frame.Table, error) {
	raw, e := frame.ReadCSV(fileName)
	if e != nil {
		return nil, e
	}

	return raw.KeepColumns("state_code", "exotic_animal_rating",
		"allows_primates", "allows_big_cats", "allows_reptiles")
}

// loadMarijuana reads the state marijuana legality table (optional source).
func loadMarijuana(fileName string) (*frame.Table, error) {
	raw, e := frame.ReadCSV(fileName)
	if e != nil {
		return nil, e
	}

	return raw.KeepColumns("state_code", "marijuana_status",
		"recreational_legal", "medical_legal", "permissiveness_score")
}
