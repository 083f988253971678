package merge

import (
	"fmt"
	"math"
	"strconv"
)

// Category labels for derived fields.
const (
	Unknown = "Unknown"

	StrongDemocrat   = "Strong Democrat"
	LeanDemocrat     = "Lean Democrat"
	Swing            = "Swing"
	LeanRepublican   = "Lean Republican"
	StrongRepublican = "Strong Republican"

	GunStrong   = "Strong"
	GunModerate = "Moderate"
	GunWeak     = "Weak"
	GunVeryWeak = "Very Weak"
	GunMinimal  = "Minimal"
)

// LeanCategory buckets a lean score (dem% minus rep%).  Thresholds are
// exclusive: a score of exactly 20 is Lean Democrat, exactly 5 is Swing.
func LeanCategory(score float64, present bool) string {
	switch {
	case !present:
		return Unknown
	case score > 20:
		return StrongDemocrat
	case score > 5:
		return LeanDemocrat
	case score > -5:
		return Swing
	case score > -20:
		return LeanRepublican
	default:
		return StrongRepublican
	}
}

// GunLawStrength buckets a letter grade.  A missing grade maps to
// Minimal, the same as an unrecognized grade.
func GunLawStrength(grade string, present bool) string {
	if !present {
		return GunMinimal
	}

	switch grade {
	case "A+", "A", "A-":
		return GunStrong
	case "B+", "B", "B-":
		return GunModerate
	case "C+", "C", "C-":
		return GunWeak
	case "D+", "D", "D-":
		return GunVeryWeak
	default:
		return GunMinimal
	}
}

// FormatDollars renders a home value as $1,200,000, or N/A when missing.
func FormatDollars(v float64, present bool) string {
	if !present {
		return "N/A"
	}

	n := int64(math.Round(v))

	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}

	s := strconv.FormatInt(n, 10)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	return fmt.Sprintf("%s$%s", sign, string(out))
}
