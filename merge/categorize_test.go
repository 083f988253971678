package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeanCategoryBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{33.4, StrongDemocrat},
		{20.1, StrongDemocrat},
		{20, LeanDemocrat}, // boundary is exclusive
		{5.1, LeanDemocrat},
		{5, Swing},
		{0, Swing},
		{-4.9, Swing},
		{-5, LeanRepublican},
		{-19.9, LeanRepublican},
		{-20, StrongRepublican},
		{-60, StrongRepublican},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, LeanCategory(c.score, true), "score %v", c.score)
	}

	assert.Equal(t, Unknown, LeanCategory(0, false))
}

func TestGunLawStrength(t *testing.T) {
	cases := map[string]string{
		"A+": GunStrong, "A": GunStrong, "A-": GunStrong,
		"B+": GunModerate, "B": GunModerate, "B-": GunModerate,
		"C+": GunWeak, "C": GunWeak, "C-": GunWeak,
		"D+": GunVeryWeak, "D": GunVeryWeak, "D-": GunVeryWeak,
		"F": GunMinimal, "": GunMinimal, "E": GunMinimal,
	}

	for grade, want := range cases {
		assert.Equal(t, want, GunLawStrength(grade, true), "grade %q", grade)
	}

	// missing grades share the Minimal bucket (flagged, intentionally kept)
	assert.Equal(t, GunMinimal, GunLawStrength("", false))
}

func TestFormatDollars(t *testing.T) {
	assert.Equal(t, "$1,200,000", FormatDollars(1200000, true))
	assert.Equal(t, "$350,000", FormatDollars(350000, true))
	assert.Equal(t, "$999", FormatDollars(999, true))
	assert.Equal(t, "$1,000", FormatDollars(999.5, true))
	assert.Equal(t, "$0", FormatDollars(0, true))
	assert.Equal(t, "-$12,500", FormatDollars(-12500, true))
	assert.Equal(t, "N/A", FormatDollars(0, false))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 66.7, round1(600.0/900.0*100))
	assert.Equal(t, 33.3, round1(300.0/900.0*100))
	assert.Equal(t, -0.1, round1(-0.05))
}
