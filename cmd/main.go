// Package main provides the entry point for the Stockbit broker summary
// analyzer. It logs a browser session into Stockbit (automated or manual)
// and extracts the broker summary table for one or more symbols across the
// requested number of trading days.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockbit-analyzer/internal/auth"
	"stockbit-analyzer/internal/browser"
	"stockbit-analyzer/internal/scraper"
	"stockbit-analyzer/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	startTime := time.Now()

	stock := flag.String("stock", "", "Stock symbol to analyze (e.g. BUMI)")
	symbolFile := flag.String("file", "", "Path to CSV file containing symbols")
	days := flag.Int("days", 1, "Number of trading days to look back (default: today only)")
	manualLogin := flag.Bool("manual-login", false, "Wait for a manual login in the browser window")
	extract := flag.Bool("extract", false, "Extract broker summary data after login")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Credentials come from the environment; a .env file is optional.
	_ = godotenv.Load()

	logger, err := utils.NewLogger(*debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Info("Starting Stockbit broker summary analyzer")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	config, err := utils.LoadConfig(configPath)
	if err != nil {
		logger.Warn("Could not load %s (%v), using defaults", configPath, err)
		config = utils.DefaultConfig()
	}

	// An interrupt mid-extraction cancels the context; the deferred
	// cleanup in run still releases the browser session before exit.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, config, *stock, *symbolFile, *days, *manualLogin, *extract); err != nil {
		logger.Error("%v", err)
		logger.Close()
		os.Exit(1)
	}

	logger.Info("Total execution time: %v", time.Since(startTime).Round(time.Second))
}

func run(ctx context.Context, logger *utils.Logger, config *utils.Config, stock, symbolFile string, days int, manualLogin, extract bool) error {
	session, err := browser.NewSession(ctx, logger, config)
	if err != nil {
		return err
	}

	s := scraper.NewScraper(session, logger, config, utils.LoadCredentials())
	defer s.Close()

	outcome, err := s.RunLogin(ctx, manualLogin)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if outcome != auth.OutcomeSuccess {
		return fmt.Errorf("login finished with outcome %q", outcome)
	}
	logger.Info("Login completed successfully!")

	if !extract {
		return nil
	}

	symbols, err := resolveSymbols(stock, symbolFile)
	if err != nil {
		return err
	}

	for i, symbol := range symbols {
		logger.Info("Processing symbol %d/%d: %s", i+1, len(symbols), symbol)

		result, err := s.RunExtraction(ctx, symbol, days)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Error("Error processing %s: %v", symbol, err)
			continue
		}

		if result.DaysWithData == 0 {
			logger.Warn("No broker summary data found for %s, nothing to save", symbol)
			continue
		}
		if err := s.SaveToCSV(result); err != nil {
			logger.Error("Error saving data for %s: %v", symbol, err)
		}
	}

	logger.Info("Aggregate Performance Report:\n%s", s.GetPerformanceTracker().GenerateAggregateReport())
	return nil
}

func resolveSymbols(stock, symbolFile string) ([]string, error) {
	switch {
	case stock != "":
		return []string{stock}, nil
	case symbolFile != "":
		symbols, err := utils.ReadSymbolsFromCSV(symbolFile)
		if err != nil {
			return nil, fmt.Errorf("reading symbol file %s: %w", symbolFile, err)
		}
		if len(symbols) == 0 {
			return nil, fmt.Errorf("symbol file %s contains no symbols", symbolFile)
		}
		return symbols, nil
	default:
		return nil, fmt.Errorf("no symbol specified: use -stock or -file with -extract")
	}
}
