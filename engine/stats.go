package engine

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the headline-metrics block of the dashboard.
type Summary struct {
	Counties int
	States   int

	AvgPrice    float64
	MedianPrice float64
	MinPrice    float64
	MaxPrice    float64

	AvgPopulation float64
}

// Summarize computes the headline metrics over a filtered view for the
// chosen bedroom type.  Missing values do not enter the statistics.
func Summarize(v View, b BedroomType) Summary {
	s := Summary{Counties: v.Len()}

	price, e := v.tbl.Column(b.ValueColumn())
	if e != nil {
		return s
	}

	var prices []float64
	for _, r := range v.rows {
		if p, ok := price.Float(r); ok {
			prices = append(prices, p)
		}
	}

	if len(prices) > 0 {
		s.AvgPrice = stat.Mean(prices, nil)
		s.MinPrice = floats.Min(prices)
		s.MaxPrice = floats.Max(prices)

		sort.Float64s(prices)
		s.MedianPrice = stat.Quantile(0.5, stat.Empirical, prices, nil)
	}

	if pop, ex := v.tbl.Column("population"); ex == nil {
		var pops []float64
		for _, r := range v.rows {
			if p, ok := pop.Float(r); ok {
				pops = append(pops, p)
			}
		}

		if len(pops) > 0 {
			s.AvgPopulation = stat.Mean(pops, nil)
		}
	}

	if states, ex := v.tbl.Column("state_code"); ex == nil {
		seen := make(map[string]bool)
		for _, r := range v.rows {
			if sc, ok := states.Element(r).(string); ok {
				seen[sc] = true
			}
		}

		s.States = len(seen)
	}

	return s
}

// CategoryCount is one slice of a distribution chart.
type CategoryCount struct {
	Label string
	Count int
}

// Distribution counts category values in a view's column, largest first.
// Missing cells are not counted.  An absent column yields nil, which the
// dashboard reads as "do not draw this chart".
func Distribution(v View, column string) []CategoryCount {
	col, e := v.tbl.Column(column)
	if e != nil {
		return nil
	}

	counts := make(map[string]int)
	for _, r := range v.rows {
		if s, ok := col.Element(r).(string); ok {
			counts[s]++
		}
	}

	out := make([]CategoryCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, CategoryCount{Label: label, Count: n})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}

		return out[i].Label < out[j].Label
	})

	return out
}
