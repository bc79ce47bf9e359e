/*
main.go - Batch projection entry point

PURPOSE:
  Orchestrates one projection run end to end:

  1. Parse flags (-config)
  2. Load the YAML run configuration
  3. Load the CSV reference tables
  4. Load the latest experience extract from SQLite (completeness-checked)
  5. Run the engine
  6. Export the result table to CSV

  Any failure at any step is fatal; there is no partial-output mode.

EXAMPLES:
  ./project -config=./run.yaml
*/
package main

import (
	"context"
	"flag"
	"log"

	"github.com/warp/treaty-engine/cashflow"
	"github.com/warp/treaty-engine/config"
	"github.com/warp/treaty-engine/export"
	"github.com/warp/treaty-engine/refdata"
	"github.com/warp/treaty-engine/store/sqlite"
	"github.com/warp/treaty-engine/treaty"
)

func main() {
	configPath := flag.String("config", "run.yaml", "run configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	engine, err := cfg.Engine()
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	book, stats, err := loadBook(cfg)
	if err != nil {
		log.Fatalf("Failed to load inputs: %v", err)
	}
	log.Printf("Loaded %d treaties; extract %s: %d experience rows retained, %d dropped",
		len(book.Treaties), stats.ExtractID, stats.Retained, stats.Dropped)

	result, err := engine.Run(book)
	if err != nil {
		log.Fatalf("Projection run failed: %v", err)
	}
	log.Printf("Run complete: %d reconciliation checks passed", len(result.Reconciliation.Checks))

	if err := export.WriteResultCSV(cfg.Output.Path, result); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}
	log.Printf("Result table written to %s", cfg.Output.Path)
}

// loadBook assembles the engine inputs from the configured sources.
func loadBook(cfg *config.Config) (cashflow.Inputs, *sqlite.LoadStats, error) {
	var book cashflow.Inputs
	var err error

	if book.Treaties, err = refdata.LoadTreaties(cfg.Inputs.Positions); err != nil {
		return book, nil, err
	}
	if book.Factors, err = refdata.LoadDevelopmentFactors(cfg.Inputs.Factors); err != nil {
		return book, nil, err
	}
	translation, err := refdata.LoadKeyTranslation(cfg.Inputs.Translation)
	if err != nil {
		return book, nil, err
	}
	if cfg.Inputs.Overrides != "" {
		if book.Overrides, err = refdata.LoadOverrides(cfg.Inputs.Overrides); err != nil {
			return book, nil, err
		}
	}

	store, err := sqlite.New(cfg.Inputs.ExperienceDB)
	if err != nil {
		return book, nil, err
	}
	defer store.Close()

	var stats *sqlite.LoadStats
	var experience []treaty.ExperienceRow
	if experience, stats, err = store.LoadLatest(context.Background(), translation); err != nil {
		return book, nil, err
	}
	book.Experience = experience

	return book, stats, nil
}
