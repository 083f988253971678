package merge

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config names the source files for one pipeline run.  Relative paths are
// resolved against DataDir.  Optional sources may be left empty.
type Config struct {
	DataDir string `yaml:"data_dir"`

	Housing    string `yaml:"housing"`
	Housing4BR string `yaml:"housing_4br"`
	Housing5BR string `yaml:"housing_5br"`

	Elections    string `yaml:"elections"`
	ElectionYear int    `yaml:"election_year"`

	GunLaws       string `yaml:"gun_laws"`
	Population    string `yaml:"population"`
	ExoticAnimals string `yaml:"exotic_animals"`
	Marijuana     string `yaml:"marijuana"`

	Output string `yaml:"output"`
}

// DefaultConfig matches the file layout the published datasets ship with.
func DefaultConfig() Config {
	return Config{
		DataDir:       "data",
		Housing:       "County_zhvi_uc_sfr_tier_0.33_0.67_sm_sa_month.csv",
		Housing4BR:    "County_zhvi_bdrmcnt_4_uc_sfrcondo_tier_0.33_0.67_sm_sa_month.csv",
		Housing5BR:    "County_zhvi_bdrmcnt_5_uc_sfrcondo_tier_0.33_0.67_sm_sa_month.csv",
		Elections:     "countypres_2000-2024.csv",
		ElectionYear:  2024,
		GunLaws:       "gun_law_grades_2024.csv",
		Population:    "county_population_estimates.csv",
		ExoticAnimals: "exotic_animal_laws_2024.csv",
		Marijuana:     "marijuana_legality_2025.csv",
		Output:        "data/merged_county_data.csv",
	}
}

// LoadConfig reads a YAML config, filling unset fields from the defaults.
func LoadConfig(fileName string) (Config, error) {
	cfg := DefaultConfig()

	b, e := os.ReadFile(fileName)
	if e != nil {
		return cfg, e
	}

	if e = yaml.Unmarshal(b, &cfg); e != nil {
		return cfg, fmt.Errorf("%s: %w", fileName, e)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	for name, v := range map[string]string{
		"housing":    c.Housing,
		"elections":  c.Elections,
		"gun_laws":   c.GunLaws,
		"population": c.Population,
		"output":     c.Output,
	} {
		if v == "" {
			return fmt.Errorf("config: %s is required", name)
		}
	}

	if c.ElectionYear < 2000 {
		return fmt.Errorf("config: election_year %d out of range", c.ElectionYear)
	}

	return nil
}

// path resolves a source file name against DataDir.
func (c Config) path(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(c.DataDir, name)
}
