package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"krxbacktest/internal/engine"
	"krxbacktest/internal/logging"
	"krxbacktest/internal/market"
	"krxbacktest/internal/repository"
	"krxbacktest/strategies"
)

func main() {
	configPath := flag.String("config", "backtest.yaml", "path to the run config file")
	flag.Parse()

	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfgFile, err := loadConfig(*configPath)
	if err != nil {
		fatal("load config: " + err.Error())
	}
	log := logging.NewLogger(cfgFile.LogLevel)

	cfg, err := cfgFile.engineConfig()
	if err != nil {
		fatal("run config: " + err.Error())
	}

	generator, err := strategies.New(cfg.StrategyID, cfg.StrategyParams)
	if err != nil {
		fatal(err.Error())
	}

	holidays, err := cfgFile.holidayDates()
	if err != nil {
		fatal(err.Error())
	}
	if len(holidays) == 0 {
		holidays = market.DefaultKRXHolidays(yearsBetween(cfg.Start.Year(), cfg.End.Year())...)
	}
	constraints := market.NewConstraints(
		market.NewCalendar(holidays),
		market.NewPriceLimits(),
		market.NewCostModel(cfg.CommissionRate, cfg.TaxRate, cfg.SlippageRate),
	)

	db, err := repository.NewDatabase(cfgFile.DatabaseURL)
	if err != nil {
		fatal("connect database: " + err.Error())
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.NewEngine(&db, constraints, log)
	result, err := eng.Run(ctx, cfg, generator)
	if err != nil {
		log.Error("backtest failed", "symbol", cfg.Symbol, "err", err)
		os.Exit(1)
	}

	engine.PrintReport(result)

	if path := cfgFile.Run.TradesCSV; path != "" {
		if err := engine.WriteTradesCSVFile(path, result.Trades); err != nil {
			log.Error("write trades csv", "path", path, "err", err)
			os.Exit(1)
		}
		log.Info("trades written", "path", path, "count", len(result.Trades))
	}
}

func yearsBetween(first, last int) []int {
	var years []int
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

func fatal(msg string) {
	os.Stderr.WriteString(msg + "\n")
	os.Exit(1)
}
