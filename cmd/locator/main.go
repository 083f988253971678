// Command locator runs the county data pipeline and answers queries
// against the merged table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Jairaye/housing-preference-locator/db"
	"github.com/Jairaye/housing-preference-locator/engine"
	"github.com/Jairaye/housing-preference-locator/merge"
	"github.com/Jairaye/housing-preference-locator/store"
)

var (
	logger *zap.Logger

	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "locator",
	Short: "Merge county datasets and query the result",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}

		var e error
		logger, e = cfg.Build()

		return e
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func loadConfig() (merge.Config, error) {
	if configFile == "" {
		return merge.DefaultConfig(), nil
	}

	return merge.LoadConfig(configFile)
}

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Run the merge pipeline and write the county table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, e := loadConfig()
		if e != nil {
			return e
		}

		p := merge.NewPipeline(cfg, logger)

		merged, e := p.Run()
		if e != nil {
			return e
		}

		return p.WriteOutput(merged)
	},
}

var (
	bedroomsFlag string

	filter struct {
		priceMin, priceMax float64
		popMin, popMax     float64
		leans              []string
		guns               []string
		marijuana          []string
		exotic             []string
		primates           bool
		bigCats            bool
		reptiles           bool
		states             []string
	}
)

func bedroomType() engine.BedroomType {
	switch bedroomsFlag {
	case "4br":
		return engine.FourBedroom
	case "5br":
		return engine.FiveBedroom
	default:
		return engine.AllHomes
	}
}

func buildFilter() engine.Filter {
	return engine.Filter{
		Bedrooms:          bedroomType(),
		PriceMin:          filter.priceMin,
		PriceMax:          filter.priceMax,
		Leans:             filter.leans,
		GunStrengths:      filter.guns,
		MarijuanaStatuses: filter.marijuana,
		ExoticRatings:     filter.exotic,
		Primates:          filter.primates,
		BigCats:           filter.bigCats,
		Reptiles:          filter.reptiles,
		PopulationMin:     filter.popMin,
		PopulationMax:     filter.popMax,
		States:            filter.states,
	}
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the merged table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, e := loadConfig()
		if e != nil {
			return e
		}

		tbl, e := store.New(cfg.Output, logger).Load()
		if e != nil {
			return e
		}

		v, e := buildFilter().Apply(tbl)
		if e != nil {
			return e
		}

		b := bedroomType()
		s := engine.Summarize(v, b)

		fmt.Printf("Counties:       %d\n", s.Counties)
		fmt.Printf("States:         %d\n", s.States)
		fmt.Printf("Avg %s price:  %s\n", b.Label(), merge.FormatDollars(s.AvgPrice, s.Counties > 0))
		fmt.Printf("Price range:    %s - %s\n",
			merge.FormatDollars(s.MinPrice, s.Counties > 0), merge.FormatDollars(s.MaxPrice, s.Counties > 0))
		fmt.Printf("Avg population: %.0f\n", s.AvgPopulation)

		for _, field := range []string{"political_lean", "gun_law_strength", "marijuana_status", "exotic_animal_rating"} {
			d := engine.Distribution(v, field)
			if d == nil {
				continue
			}

			fmt.Printf("\n%s:\n", field)
			for _, c := range d {
				fmt.Printf("  %-20s %d\n", c.Label, c.Count)
			}
		}

		return nil
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered subset as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, e := loadConfig()
		if e != nil {
			return e
		}

		tbl, e := store.New(cfg.Output, logger).Load()
		if e != nil {
			return e
		}

		v, e := buildFilter().Apply(tbl)
		if e != nil {
			return e
		}

		logger.Info("export", zap.Int("rows", v.Len()))

		if exportOut == "" {
			return engine.ExportCSV(v, os.Stdout)
		}

		f, e := os.Create(exportOut)
		if e != nil {
			return e
		}

		if e = engine.ExportCSV(v, f); e != nil {
			_ = f.Close()
			return e
		}

		return f.Close()
	},
}

var (
	loadDSN       string
	loadTable     string
	loadOverwrite bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Push the merged table to ClickHouse or Postgres",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, e := loadConfig()
		if e != nil {
			return e
		}

		tbl, e := store.New(cfg.Output, logger).Load()
		if e != nil {
			return e
		}

		d, e := db.Open(loadDSN)
		if e != nil {
			return e
		}
		defer func() { _ = d.Close() }()

		if e = d.Save(tbl, loadTable, loadOverwrite); e != nil {
			return e
		}

		logger.Info("loaded table",
			zap.String("dialect", d.DialectName()),
			zap.String("table", loadTable),
			zap.Int("rows", tbl.RowCount()))

		return nil
	},
}

func addFilterFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&bedroomsFlag, "bedrooms", "all", "all, 4br or 5br")
	fs.Float64Var(&filter.priceMin, "price-min", 0, "minimum home value")
	fs.Float64Var(&filter.priceMax, "price-max", 0, "maximum home value")
	fs.StringSliceVar(&filter.leans, "lean", nil, "political lean categories")
	fs.StringSliceVar(&filter.guns, "gun", nil, "gun law strength categories")
	fs.StringSliceVar(&filter.marijuana, "marijuana", nil, "marijuana statuses")
	fs.StringSliceVar(&filter.exotic, "exotic", nil, "exotic animal ratings")
	fs.BoolVar(&filter.primates, "primates", false, "require primates allowed")
	fs.BoolVar(&filter.bigCats, "big-cats", false, "require big cats allowed")
	fs.BoolVar(&filter.reptiles, "reptiles", false, "require exotic reptiles allowed")
	fs.Float64Var(&filter.popMin, "pop-min", 0, "minimum population")
	fs.Float64Var(&filter.popMax, "pop-max", 0, "maximum population")
	fs.StringSliceVar(&filter.states, "state", nil, "state names")
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	addFilterFlags(statsCmd)
	addFilterFlags(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")

	loadCmd.Flags().StringVar(&loadDSN, "dsn", "", "database DSN (clickhouse:// or postgres://)")
	loadCmd.Flags().StringVar(&loadTable, "table", "county_data", "destination table")
	loadCmd.Flags().BoolVar(&loadOverwrite, "overwrite", false, "drop an existing table first")
	_ = loadCmd.MarkFlagRequired("dsn")

	rootCmd.AddCommand(prepareCmd, statsCmd, exportCmd, loadCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
