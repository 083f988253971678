package merge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()

	fileName := filepath.Join(dir, name)
	require.Nil(t, os.WriteFile(fileName, []byte(body), 0o644))

	return fileName
}

func TestCodeString(t *testing.T) {
	for _, c := range []struct {
		cell  any
		width int
		want  string
	}{
		{1, 2, "01"},
		{10, 2, "10"},
		{"06", 2, "06"},
		{"6", 2, "06"},
		{6.0, 2, "06"},
		{1, 3, "001"},
		{"085", 3, "085"},
	} {
		got, e := codeString(c.cell, c.width)
		require.Nil(t, e)
		assert.Equal(t, c.want, got)
	}

	_, e := codeString(nil, 2)
	assert.NotNil(t, e)
	_, e = codeString("xx", 2)
	assert.NotNil(t, e)
	_, e = codeString(100, 2)
	assert.NotNil(t, e)
	_, e = codeString(-1, 2)
	assert.NotNil(t, e)
}

func TestFipsKey(t *testing.T) {
	k, e := fipsKey(6, 1)
	require.Nil(t, e)
	assert.Equal(t, 6001, k)

	// state 1 county 1 must not collide with state 10 county 1
	k1, _ := fipsKey(1, 1)
	k10, _ := fipsKey(10, 1)
	assert.Equal(t, 1001, k1)
	assert.Equal(t, 10001, k10)
	assert.NotEqual(t, k1, k10)

	k, e = fipsKey("36", "061")
	require.Nil(t, e)
	assert.Equal(t, 36061, k)

	_, e = fipsKey(nil, 1)
	assert.NotNil(t, e)
}

func TestLatestMonthColumn(t *testing.T) {
	// out of chronological order on purpose: headers are parsed, not trusted
	got, e := latestMonthColumn([]string{"RegionName", "2025-10-31", "2024-01-31", "2025-09-30"})
	require.Nil(t, e)
	assert.Equal(t, "2025-10-31", got)

	got, e = latestMonthColumn([]string{"2024-01", "2024-02"})
	require.Nil(t, e)
	assert.Equal(t, "2024-02", got)

	_, e = latestMonthColumn([]string{"RegionName", "State"})
	assert.NotNil(t, e)
}

const housingCSV = `RegionID,RegionName,StateName,State,StateCodeFIPS,MunicipalCodeFIPS,2024-12-31,2025-10-31,2025-09-30
3101,Alameda County,California,CA,06,001,1100000,1200000,1150000
1090,New York County,New York,NY,36,061,1500000,,1480000
2020,Autauga County,Alabama,AL,01,001,180000,185000,184000
`

func TestLoadHousing(t *testing.T) {
	dir := t.TempDir()
	fileName := writeFile(t, dir, "housing.csv", housingCSV)

	tbl, e := loadHousing(fileName, "median_home_value_all")
	require.Nil(t, e)

	assert.Equal(t, []string{"county_fips", "county_name", "state_name", "state_code", "median_home_value_all"},
		tbl.ColumnNames())

	fips, _ := tbl.Column("county_fips")
	assert.Equal(t, []int{6001, 36061, 1001}, fips.Ints())

	// latest month is 2025-10-31 even though 2025-09-30 is the last column
	v, _ := tbl.Column("median_home_value_all")
	assert.Equal(t, 1200000.0, v.Element(0))
	assert.True(t, v.IsMissing(1))
	assert.Equal(t, 185000.0, v.Element(2))

	name, _ := tbl.Column("county_name")
	assert.Equal(t, "Alameda County", name.Element(0))

	_, e = loadHousing(filepath.Join(dir, "nope.csv"), "median_home_value_all")
	assert.NotNil(t, e)

	bad := writeFile(t, dir, "bad.csv", "RegionName,State\nAlameda,CA\n")
	_, e = loadHousing(bad, "median_home_value_all")
	assert.NotNil(t, e)
}

func TestLoadHousingValues(t *testing.T) {
	fileName := writeFile(t, t.TempDir(), "housing4.csv", housingCSV)

	tbl, e := loadHousingValues(fileName, "median_home_value_4br")
	require.Nil(t, e)
	assert.Equal(t, []string{"county_fips", "median_home_value_4br"}, tbl.ColumnNames())
}

func TestLoadPopulation(t *testing.T) {
	// keys arrive as floats here, a common artifact of the source files
	fileName := writeFile(t, t.TempDir(), "pop.csv",
		"county_fips,county,population\n6001.0,Alameda,1622188\n36061.0,New York,1694251\n")

	tbl, e := loadPopulation(fileName)
	require.Nil(t, e)

	fips, _ := tbl.Column("county_fips")
	assert.Equal(t, []int{6001, 36061}, fips.Ints())

	pop, _ := tbl.Column("population")
	assert.Equal(t, 1622188, pop.Element(0))
}

func TestLoadGunLaws(t *testing.T) {
	fileName := writeFile(t, t.TempDir(), "guns.csv",
		"state_code,state,gun_law_grade,gun_death_rate\nCA,California,A,8.5\nNY,New York,A-,5.3\n")

	tbl, e := loadGunLaws(fileName)
	require.Nil(t, e)
	assert.Equal(t, []string{"state_code", "gun_law_grade", "gun_death_rate"}, tbl.ColumnNames())
}

func TestLoadStateSources(t *testing.T) {
	dir := t.TempDir()

	exotic := writeFile(t, dir, "exotic.csv",
		"state_code,exotic_animal_rating,allows_primates,allows_big_cats,allows_reptiles\nNV,Permissive,Yes,Limited,Yes\n")
	tbl, e := loadExoticAnimals(exotic)
	require.Nil(t, e)
	assert.Equal(t, 5, tbl.ColumnCount())

	mj := writeFile(t, dir, "mj.csv",
		"state_code,marijuana_status,recreational_legal,medical_legal,permissiveness_score\nCA,Fully Legal,Yes,Yes,10\n")
	tbl, e = loadMarijuana(mj)
	require.Nil(t, e)
	assert.Equal(t, 5, tbl.ColumnCount())

	// a malformed optional source surfaces an error for the caller to catch
	bad := writeFile(t, dir, "bad.csv", "state_code\nCA\n")
	_, e = loadExoticAnimals(bad)
	assert.NotNil(t, e)
}
