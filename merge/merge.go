// Package merge implements the county data merger: it normalizes the
// source datasets to common keys, left-joins them onto the housing table,
// derives the categorical fields, and writes one denormalized table with
// a row per county.
package merge

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Jairaye/housing-preference-locator/frame"
)

type Pipeline struct {
	cfg Config
	log *zap.Logger
}

func NewPipeline(cfg Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}

	return &Pipeline{cfg: cfg, log: log}
}

// Run executes the merge and returns the final table.  Required sources
// (housing, elections, gun laws, population) abort the run on error;
// optional sources (4BR/5BR housing, exotic animals, marijuana) log a
// warning and their columns are omitted from the output.
func (p *Pipeline) Run() (*frame.Table, error) {
	cfg := p.cfg

	merged, e := loadHousing(cfg.path(cfg.Housing), "median_home_value_all")
	if e != nil {
		return nil, fmt.Errorf("housing: %w", e)
	}
	p.log.Info("loaded housing", zap.Int("counties", merged.RowCount()))

	merged = p.joinOptionalValues(merged, cfg.path(cfg.Housing4BR), "median_home_value_4br")
	merged = p.joinOptionalValues(merged, cfg.path(cfg.Housing5BR), "median_home_value_5br")

	elections, e := loadElections(cfg.path(cfg.Elections), cfg.ElectionYear)
	if e != nil {
		return nil, fmt.Errorf("elections: %w", e)
	}
	p.log.Info("loaded elections",
		zap.Int("year", cfg.ElectionYear), zap.Int("counties", elections.RowCount()))

	if merged, e = frame.LeftJoin(merged, elections, "county_fips",
		"dem_pct", "rep_pct", "lean_score"); e != nil {
		return nil, e
	}

	gunLaws, e := loadGunLaws(cfg.path(cfg.GunLaws))
	if e != nil {
		return nil, fmt.Errorf("gun laws: %w", e)
	}

	if merged, e = frame.LeftJoin(merged, gunLaws, "state_code",
		"gun_law_grade", "gun_death_rate"); e != nil {
		return nil, e
	}

	population, e := loadPopulation(cfg.path(cfg.Population))
	if e != nil {
		return nil, fmt.Errorf("population: %w", e)
	}

	if merged, e = frame.LeftJoin(merged, population, "county_fips", "population"); e != nil {
		return nil, e
	}

	merged = p.joinOptionalStates(merged, cfg.path(cfg.ExoticAnimals), loadExoticAnimals,
		"exotic animals", "exotic_animal_rating", "allows_primates", "allows_big_cats", "allows_reptiles")
	merged = p.joinOptionalStates(merged, cfg.path(cfg.Marijuana), loadMarijuana,
		"marijuana", "marijuana_status", "recreational_legal", "medical_legal", "permissiveness_score")

	if merged, e = p.finish(merged); e != nil {
		return nil, e
	}

	p.summarize(merged)

	return merged, nil
}

// joinOptionalValues attaches a bedroom-count housing value; failures
// degrade to a warning.
func (p *Pipeline) joinOptionalValues(merged *frame.Table, fileName, valueName string) *frame.Table {
	if fileName == "" {
		return merged
	}

	t, e := loadHousingValues(fileName, valueName)
	if e != nil {
		p.log.Warn("optional source skipped", zap.String("source", valueName), zap.Error(e))
		return merged
	}

	out, e := frame.LeftJoin(merged, t, "county_fips", valueName)
	if e != nil {
		p.log.Warn("optional source skipped", zap.String("source", valueName), zap.Error(e))
		return merged
	}

	return out
}

// joinOptionalStates attaches a state-level optional source by postal code.
func (p *Pipeline) joinOptionalStates(merged *frame.Table, fileName string,
	load func(string) (*frame.Table, error), label string, cols ...string) *frame.Table {
	if fileName == "" {
		return merged
	}

	t, e := load(fileName)
	if e != nil {
		p.log.Warn("optional source skipped", zap.String("source", label), zap.Error(e))
		return merged
	}

	out, e := frame.LeftJoin(merged, t, "state_code", cols...)
	if e != nil {
		p.log.Warn("optional source skipped", zap.String("source", label), zap.Error(e))
		return merged
	}

	p.log.Info("loaded "+label, zap.Int("states", t.RowCount()))

	return out
}

// finish applies the mandatory home-value filter and appends the derived
// columns, keeping the join-order column layout.
func (p *Pipeline) finish(merged *frame.Table) (*frame.Table, error) {
	value, e := merged.Column("median_home_value_all")
	if e != nil {
		return nil, e
	}

	var keep []int
	for i := 0; i < merged.RowCount(); i++ {
		if !value.IsMissing(i) {
			keep = append(keep, i)
		}
	}

	p.log.Info("home-value filter",
		zap.Int("rows_before", merged.RowCount()), zap.Int("rows_after", len(keep)))

	merged = merged.Select(keep)
	order := merged.ColumnNames()

	// the key is written zero-padded so 06001 survives a round trip
	fips, e := merged.Column("county_fips")
	if e != nil {
		return nil, e
	}

	keys := make([]string, merged.RowCount())
	keysMissing := make([]bool, merged.RowCount())
	for i := range keys {
		if fips.IsMissing(i) {
			keysMissing[i] = true
			continue
		}

		keys[i] = fmt.Sprintf("%05d", fips.Ints()[i])
	}

	keyCol, e := frame.NewColumn("county_fips", keys, keysMissing)
	if e != nil {
		return nil, e
	}
	if e = merged.DropColumns("county_fips"); e != nil {
		return nil, e
	}
	if e = merged.AppendColumn(keyCol); e != nil {
		return nil, e
	}

	for _, name := range []string{"median_home_value_all", "median_home_value_4br", "median_home_value_5br"} {
		if !merged.HasColumn(name) {
			continue
		}

		col, _ := merged.Column(name)
		formatted := make([]string, merged.RowCount())
		for i := range formatted {
			v, ok := col.Float(i)
			formatted[i] = FormatDollars(v, ok)
		}

		fc, ex := frame.NewColumn(name+"_formatted", formatted, nil)
		if ex != nil {
			return nil, ex
		}
		if e = merged.AppendColumn(fc); e != nil {
			return nil, e
		}

		order = append(order, name+"_formatted")
	}

	lean, e := merged.Column("lean_score")
	if e != nil {
		return nil, e
	}

	leanCat := make([]string, merged.RowCount())
	for i := range leanCat {
		v, ok := lean.Float(i)
		leanCat[i] = LeanCategory(v, ok)
	}

	lc, e := frame.NewColumn("political_lean", leanCat, nil)
	if e != nil {
		return nil, e
	}
	if e = merged.AppendColumn(lc); e != nil {
		return nil, e
	}

	grade, e := merged.Column("gun_law_grade")
	if e != nil {
		return nil, e
	}

	gunCat := make([]string, merged.RowCount())
	for i := range gunCat {
		g, ok := grade.Element(i).(string)
		gunCat[i] = GunLawStrength(g, ok)
	}

	gc, e := frame.NewColumn("gun_law_strength", gunCat, nil)
	if e != nil {
		return nil, e
	}
	if e = merged.AppendColumn(gc); e != nil {
		return nil, e
	}

	order = append(order, "political_lean", "gun_law_strength")

	return merged.KeepColumns(order...)
}

func (p *Pipeline) summarize(merged *frame.Table) {
	value, e := merged.Column("median_home_value_all")
	if e != nil {
		return
	}

	min, max, seen := 0.0, 0.0, false
	for i := 0; i < merged.RowCount(); i++ {
		v, ok := value.Float(i)
		if !ok {
			continue
		}

		if !seen || v < min {
			min = v
		}
		if !seen || v > max {
			max = v
		}
		seen = true
	}

	states := make(map[string]bool)
	if sc, ex := merged.Column("state_code"); ex == nil {
		for i := 0; i < merged.RowCount(); i++ {
			if s, ok := sc.Element(i).(string); ok {
				states[s] = true
			}
		}
	}

	p.log.Info("merge complete",
		zap.Int("counties", merged.RowCount()),
		zap.Int("states", len(states)),
		zap.String("value_min", FormatDollars(min, seen)),
		zap.String("value_max", FormatDollars(max, seen)))

	for _, name := range []string{"political_lean", "gun_law_strength", "marijuana_status", "exotic_animal_rating"} {
		if !merged.HasColumn(name) {
			continue
		}

		col, _ := merged.Column(name)
		p.log.Info("distribution", zap.String("field", name), zap.Any("counts", valueCounts(col)))
	}
}

func valueCounts(c *frame.Column) map[string]int {
	counts := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		if s, ok := c.Element(i).(string); ok {
			counts[s]++
		}
	}

	return counts
}

// WriteOutput writes the merged table to the configured output file,
// creating the directory if needed.
func (p *Pipeline) WriteOutput(merged *frame.Table) error {
	if dir := filepath.Dir(p.cfg.Output); dir != "." && dir != "" {
		if e := os.MkdirAll(dir, 0o755); e != nil {
			return e
		}
	}

	if e := frame.WriteCSV(merged, p.cfg.Output); e != nil {
		return e
	}

	p.log.Info("wrote output",
		zap.String("path", p.cfg.Output), zap.Int("rows", merged.RowCount()))

	return nil
}
