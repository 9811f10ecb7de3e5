package scraper

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"stockbit-analyzer/internal/auth"
	"stockbit-analyzer/internal/browser"
	"stockbit-analyzer/internal/calendar"
	"stockbit-analyzer/internal/market"
	"stockbit-analyzer/internal/utils"
	"stockbit-analyzer/models"
)

const symbolURLFormat = "https://stockbit.com/symbol/%s"

// tableTextScript reads the rendered text of the broker summary region.
// The DOM traversal happens page-side; the Go side only consumes the
// resulting string.
const tableTextScript = `(() => {
	const el = document.querySelector('.broker-summary-table')
		|| document.querySelector('[data-cy="broker-summary"]');
	return el ? el.innerText : '';
})()`

// Scraper sequences login, date selection, and extraction over one browser
// session. It is the sole owner of that session for its lifetime.
type Scraper struct {
	surface     browser.Surface
	nav         *browser.Navigator
	selector    *calendar.Selector
	logger      *utils.Logger
	config      *utils.Config
	creds       utils.Credentials
	perfTracker *utils.PerformanceTracker
}

func NewScraper(surface browser.Surface, logger *utils.Logger, config *utils.Config, creds utils.Credentials) *Scraper {
	delay := time.Duration(config.Scraper.Delay) * time.Second
	return &Scraper{
		surface:     surface,
		nav:         browser.NewNavigator(surface, logger, delay),
		selector:    calendar.NewSelector(surface, logger),
		logger:      logger,
		config:      config,
		creds:       creds,
		perfTracker: utils.NewPerformanceTracker(),
	}
}

// RunLogin authenticates the session. It must succeed before any
// extraction call.
func (s *Scraper) RunLogin(ctx context.Context, manual bool) (auth.Outcome, error) {
	done := s.perfTracker.Track("login")
	defer done()

	flow := auth.NewFlow(s.surface, s.nav, s.logger, s.creds, s.config.Scraper.Retries)
	return flow.Login(ctx, manual)
}

// RunExtraction pulls the broker summary for the given symbol across the
// most recent trading days. A day that yields no rows is kept as a valid
// empty result — holidays render an empty table — and extraction moves on
// to the next day.
func (s *Scraper) RunExtraction(ctx context.Context, symbol string, days int) (*models.ExtractionResult, error) {
	url := fmt.Sprintf(symbolURLFormat, symbol)
	if err := s.nav.Navigate(url, s.config.Scraper.Retries); err != nil {
		return nil, err
	}

	settle := time.Duration(s.config.Scraper.SettleDelay) * time.Second
	time.Sleep(settle)

	tradingDays := market.TradingDays(time.Now(), days, s.logger)
	s.logger.Info("Extracting broker summary for %s across %d trading day(s)", symbol, len(tradingDays))

	result := &models.ExtractionResult{Symbol: symbol}
	for i, day := range tradingDays {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		s.logger.Info("Day %d/%d: %s", i+1, len(tradingDays), day.Format("2006-01-02"))

		doneSelect := s.perfTracker.Track("select_range")
		s.selector.SelectRange(calendar.SingleDay(day))
		doneSelect()

		// Let the table re-render for the new range before reading it.
		time.Sleep(settle)

		doneExtract := s.perfTracker.Track("extract")
		extraction := s.extractDay(symbol, day)
		doneExtract()

		summary := models.DaySummary{
			Day:     i + 1,
			Date:    day,
			Rows:    extraction.Rows,
			RawText: extraction.RawText,
		}
		result.Days = append(result.Days, summary)

		if len(extraction.Rows) > 0 {
			result.DaysWithData++
			s.logger.Info("Extracted %d broker summary rows", len(extraction.Rows))
		} else {
			s.logger.Info("No broker summary rows for %s on %s (possibly a holiday)",
				symbol, day.Format("2006-01-02"))
		}
	}

	s.logger.Info("Extraction complete: %d of %d day(s) had data", result.DaysWithData, len(result.Days))
	return result, nil
}

func (s *Scraper) extractDay(symbol string, day time.Time) *market.Extraction {
	var text string
	if err := s.surface.Evaluate(tableTextScript, &text); err != nil {
		s.logger.Warn("Failed to read table text for %s on %s: %v",
			symbol, day.Format("2006-01-02"), err)
		return market.ParseBrokerSummary("")
	}

	extraction := market.ParseBrokerSummary(text)
	if !extraction.HeaderFound {
		s.logger.Warn("Broker summary header not found for %s on %s (%d tokens scanned)",
			symbol, day.Format("2006-01-02"), len(extraction.Tokens))
	}
	return extraction
}

// SaveToCSV writes the extraction result under output/, one line per
// broker summary row with its trading date.
func (s *Scraper) SaveToCSV(result *models.ExtractionResult) error {
	if result == nil || result.DaysWithData == 0 {
		return fmt.Errorf("no data to save")
	}

	if err := os.MkdirAll("output", 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	filename := fmt.Sprintf("output/%s_broker_summary.csv", result.Symbol)
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Date", "BuyBroker", "BuyValue", "BuyLot", "BuyAvg", "SellBroker", "SellValue", "SellLot", "SellAvg"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %v", err)
	}

	for _, day := range result.Days {
		date := day.Date.Format("2006-01-02")
		for _, row := range day.Rows {
			record := []string{
				date,
				row.BuyBroker, row.BuyValue, row.BuyLot, row.BuyAvg,
				row.SellBroker, row.SellValue, row.SellLot, row.SellAvg,
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record: %v", err)
			}
		}
	}

	s.logger.Info("Successfully saved data to %s", filename)
	return nil
}

// Close releases the browser session.
func (s *Scraper) Close() {
	s.logger.Info("Closing browser...")
	s.surface.Close()
}

func (s *Scraper) GetPerformanceTracker() *utils.PerformanceTracker {
	return s.perfTracker
}
