/*
Package config loads the YAML run configuration.

PURPOSE:
  A projection run is fully described by one YAML file: horizon bounds,
  valuation month, full-development age, reconciliation tolerance, and the
  paths of the input tables and the output file. The cmd layer passes only
  the config path as a flag; everything else lives here.

EXAMPLE:
  horizon:
    start: 202001
    end:   207012
  valuation_month: 202506
  full_development_months: 240
  tolerance: "0.000001"
  inputs:
    positions: ./data/positions.csv
    factors: ./data/factors.csv
    translation: ./data/translation.csv
    overrides: ./data/overrides.csv
    experience_db: ./data/experience.db
  output:
    path: ./out/projection.csv
*/
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/treaty-engine/cashflow"
	"github.com/warp/treaty-engine/treaty"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Horizon struct {
		Start int `yaml:"start"` // YYYYMM
		End   int `yaml:"end"`   // YYYYMM
	} `yaml:"horizon"`

	// ValuationMonth bounds reported-value substitution; 0 means no cutoff.
	ValuationMonth int `yaml:"valuation_month"`

	FullDevelopmentMonths int    `yaml:"full_development_months"`
	Tolerance             string `yaml:"tolerance"`

	Inputs struct {
		Positions    string `yaml:"positions"`
		Factors      string `yaml:"factors"`
		Translation  string `yaml:"translation"`
		Overrides    string `yaml:"overrides"` // optional table, optional path
		ExperienceDB string `yaml:"experience_db"`
	} `yaml:"inputs"`

	Output struct {
		Path string `yaml:"path"`
	} `yaml:"output"`
}

// Load reads, defaults, and validates a config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Horizon.Start == 0 {
		c.Horizon.Start = cashflow.DefaultHorizon().Start.YYYYMM()
	}
	if c.Horizon.End == 0 {
		c.Horizon.End = cashflow.DefaultHorizon().End.YYYYMM()
	}
	if c.FullDevelopmentMonths == 0 {
		c.FullDevelopmentMonths = cashflow.DefaultFullDevelopmentMonths
	}
	if c.Tolerance == "" {
		c.Tolerance = "0.000001"
	}
}

// Validate rejects configs that cannot describe a run.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	start, err := treaty.ParseYYYYMM(c.Horizon.Start)
	if err != nil {
		return fmt.Errorf("horizon.start: %w", err)
	}
	end, err := treaty.ParseYYYYMM(c.Horizon.End)
	if err != nil {
		return fmt.Errorf("horizon.end: %w", err)
	}
	if end.Before(start) {
		return errors.New("horizon.end precedes horizon.start")
	}
	if c.ValuationMonth != 0 {
		if _, err := treaty.ParseYYYYMM(c.ValuationMonth); err != nil {
			return fmt.Errorf("valuation_month: %w", err)
		}
	}
	if c.FullDevelopmentMonths <= 0 {
		return errors.New("full_development_months must be positive")
	}
	if _, err := decimal.NewFromString(c.Tolerance); err != nil {
		return fmt.Errorf("tolerance: %w", err)
	}
	if c.Inputs.Positions == "" {
		return errors.New("inputs.positions is required")
	}
	if c.Inputs.Factors == "" {
		return errors.New("inputs.factors is required")
	}
	if c.Inputs.Translation == "" {
		return errors.New("inputs.translation is required")
	}
	if c.Inputs.ExperienceDB == "" {
		return errors.New("inputs.experience_db is required")
	}
	return nil
}

// Engine builds a cashflow.Engine from the validated config.
func (c *Config) Engine() (*cashflow.Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	start, _ := treaty.ParseYYYYMM(c.Horizon.Start)
	end, _ := treaty.ParseYYYYMM(c.Horizon.End)
	tolerance, _ := decimal.NewFromString(c.Tolerance)

	engine := cashflow.NewEngine()
	engine.Horizon = cashflow.Horizon{Start: start, End: end}
	engine.FullDevelopmentMonths = c.FullDevelopmentMonths
	engine.Tolerance = tolerance
	if c.ValuationMonth != 0 {
		valuation, _ := treaty.ParseYYYYMM(c.ValuationMonth)
		engine.Valuation = valuation
	}
	return engine, nil
}
