package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize(All(mergedFixture()), AllHomes)

	assert.Equal(t, 4, s.Counties)
	assert.Equal(t, 4, s.States)
	assert.Equal(t, 783750.0, s.AvgPrice)
	assert.Equal(t, 185000.0, s.MinPrice)
	assert.Equal(t, 1500000.0, s.MaxPrice)
	assert.InDelta(t, 844211.25, s.AvgPopulation, 0.01)
	assert.Greater(t, s.MedianPrice, s.MinPrice)
	assert.Less(t, s.MedianPrice, s.MaxPrice)
}

func TestSummarizeEmptyView(t *testing.T) {
	tbl := mergedFixture()
	s := Summarize(View{tbl: tbl}, AllHomes)

	assert.Equal(t, 0, s.Counties)
	assert.Equal(t, 0.0, s.AvgPrice)
}

func TestDistribution(t *testing.T) {
	d := Distribution(All(mergedFixture()), "political_lean")

	require.Len(t, d, 3)
	assert.Equal(t, CategoryCount{Label: "Strong Democrat", Count: 2}, d[0])
	// ties break alphabetically
	assert.Equal(t, "Strong Republican", d[1].Label)
	assert.Equal(t, "Unknown", d[2].Label)

	assert.Nil(t, Distribution(All(mergedFixture()), "no_such_column"))
}

func TestBuildTable(t *testing.T) {
	tv, e := BuildTable(All(mergedFixture()), AllHomes, "All Homes Value", true)
	require.Nil(t, e)

	assert.Equal(t, []string{"County", "State", "All Homes Value", "Population",
		"Political Lean", "Gun Grade", "Lean Score", "Marijuana", "Exotic Pets"}, tv.Columns)
	require.Len(t, tv.Rows, 4)

	// sorted by the underlying price, not the display string
	assert.Equal(t, "Autauga County", tv.Rows[0][0])
	assert.Equal(t, "$185,000", tv.Rows[0][2])
	assert.Equal(t, "New York County", tv.Rows[3][0])

	// a missing lean score renders as N/A
	assert.Equal(t, "N/A", tv.Rows[0][6])

	_, e = BuildTable(All(mergedFixture()), AllHomes, "Bogus", true)
	assert.NotNil(t, e)
}

func TestBuildTableDescending(t *testing.T) {
	tv, e := BuildTable(All(mergedFixture()), AllHomes, "Population", false)
	require.Nil(t, e)
	assert.Equal(t, "New York County", tv.Rows[0][0])
	assert.Equal(t, "Loving County", tv.Rows[3][0])
}

func TestTopAffordable(t *testing.T) {
	tv, e := TopAffordable(All(mergedFixture()), AllHomes, 2)
	require.Nil(t, e)
	require.Len(t, tv.Rows, 2)
	assert.Equal(t, "Autauga County", tv.Rows[0][0])
	assert.Equal(t, "Loving County", tv.Rows[1][0])
}

func TestScatterData(t *testing.T) {
	pts := ScatterData(All(mergedFixture()), AllHomes)
	require.Len(t, pts, 4)
	assert.Equal(t, "Alameda County", pts[0].County)
	assert.Equal(t, 1200000.0, pts[0].Price)
	assert.Equal(t, "Strong Democrat", pts[0].Lean)

	// rows missing the chosen value drop out
	pts = ScatterData(All(mergedFixture()), FourBedroom)
	assert.Len(t, pts, 2)
}

func TestMapData(t *testing.T) {
	pts := MapData(All(mergedFixture()), AllHomes)
	require.Len(t, pts, 4)
	assert.Equal(t, "CA", pts[0].State)
	assert.Equal(t, 1622188.0, pts[0].Population)
}

func TestExportCSV(t *testing.T) {
	v, e := Filter{Leans: []string{"Strong Republican"}}.Apply(mergedFixture())
	require.Nil(t, e)

	var buf bytes.Buffer
	require.Nil(t, ExportCSV(v, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2) // header + one county
	assert.Contains(t, lines[0], "county_fips")
	assert.Contains(t, lines[1], "Loving County")
}
