package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"krxbacktest/internal/engine"
	"krxbacktest/types"
)

// fileConfig is the YAML run file the CLI consumes.
type fileConfig struct {
	LogLevel    string    `yaml:"log_level"`
	DatabaseURL string    `yaml:"database_url"`
	Holidays    []string  `yaml:"holidays"`
	Run         runConfig `yaml:"run"`
}

type runConfig struct {
	Symbol               string             `yaml:"symbol"`
	Tier                 string             `yaml:"tier"`
	Strategy             string             `yaml:"strategy"`
	Params               map[string]float64 `yaml:"params"`
	Start                string             `yaml:"start"`
	End                  string             `yaml:"end"`
	InitialCapital       string             `yaml:"initial_capital"`
	MaxPositions         int                `yaml:"max_positions"`
	BasePositionFraction string             `yaml:"base_position_fraction"`
	CommissionRate       string             `yaml:"commission_rate"`
	TaxRate              string             `yaml:"tax_rate"`
	SlippageRate         string             `yaml:"slippage_rate"`
	RiskFreeRate         float64            `yaml:"risk_free_rate"`
	TradesCSV            string             `yaml:"trades_csv"`
}

// loadConfig reads the YAML run file and applies environment overrides.
func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &fileConfig{LogLevel: "info"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

const dateLayout = "2006-01-02"

// engineConfig converts the file's run block to the engine Config, leaving
// unset fields at the engine defaults.
func (c *fileConfig) engineConfig() (engine.Config, error) {
	run := c.Run

	start, err := time.Parse(dateLayout, run.Start)
	if err != nil {
		return engine.Config{}, fmt.Errorf("run.start: %w", err)
	}
	end, err := time.Parse(dateLayout, run.End)
	if err != nil {
		return engine.Config{}, fmt.Errorf("run.end: %w", err)
	}
	capital, err := decimal.NewFromString(run.InitialCapital)
	if err != nil {
		return engine.Config{}, fmt.Errorf("run.initial_capital: %w", err)
	}

	cfg := engine.NewConfig(run.Symbol, run.Strategy, start, end, capital)
	cfg.StrategyParams = run.Params
	cfg.ShowProgress = true
	if run.RiskFreeRate != 0 {
		cfg.RiskFreeRate = run.RiskFreeRate
	}

	if run.Tier != "" {
		cfg.Tier = types.Tier(run.Tier)
	}
	if run.MaxPositions > 0 {
		cfg.MaxPositions = run.MaxPositions
	}
	if err := overrideRate(&cfg.BasePositionFraction, run.BasePositionFraction, "run.base_position_fraction"); err != nil {
		return engine.Config{}, err
	}
	if err := overrideRate(&cfg.CommissionRate, run.CommissionRate, "run.commission_rate"); err != nil {
		return engine.Config{}, err
	}
	if err := overrideRate(&cfg.TaxRate, run.TaxRate, "run.tax_rate"); err != nil {
		return engine.Config{}, err
	}
	if err := overrideRate(&cfg.SlippageRate, run.SlippageRate, "run.slippage_rate"); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

func (c *fileConfig) holidayDates() ([]time.Time, error) {
	var out []time.Time
	for _, s := range c.Holidays {
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", s, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func overrideRate(dst *decimal.Decimal, raw, field string) error {
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = v
	return nil
}
