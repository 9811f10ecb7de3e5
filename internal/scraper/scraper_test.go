package scraper

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbit-analyzer/internal/market"
	"stockbit-analyzer/internal/utils"
	"stockbit-analyzer/models"
)

type fakeSurface struct {
	tableText string
	navigated []string
}

func (f *fakeSurface) Navigate(url string) error {
	f.navigated = append(f.navigated, url)
	return nil
}

func (f *fakeSurface) Location() (string, error) {
	if len(f.navigated) == 0 {
		return "about:blank", nil
	}
	return f.navigated[len(f.navigated)-1], nil
}

func (f *fakeSurface) Evaluate(script string, out interface{}) error {
	s, ok := out.(*string)
	if !ok {
		return nil
	}
	switch {
	case strings.Contains(script, "broker-summary-table"):
		*s = f.tableText
	case strings.Contains(script, "el.value"):
		// Confirm any date the selector asks about.
		day := market.TradingDays(time.Now(), 1, nil)[0]
		*s = day.Format("02 Jan 2006")
	default:
		*s = "clicked"
	}
	return nil
}

func (f *fakeSurface) WaitVisible(selector string, timeout time.Duration) error { return nil }
func (f *fakeSurface) Click(selector string) error                              { return nil }
func (f *fakeSurface) Fill(selector, text string) error                         { return nil }
func (f *fakeSurface) PressKey(key string) error                                { return nil }
func (f *fakeSurface) IsClosed() bool                                           { return false }
func (f *fakeSurface) Close()                                                   {}

func newTestScraper(surface *fakeSurface) *Scraper {
	cfg := utils.DefaultConfig()
	cfg.Scraper.Delay = 0
	cfg.Scraper.SettleDelay = 0
	return NewScraper(surface, utils.NewNopLogger(), cfg, utils.Credentials{})
}

func TestRunExtractionSingleDay(t *testing.T) {
	surface := &fakeSurface{
		tableText: "BY B.val B.lot B.avg SL S.val S.lot S.avg AB 1,000,000 500 2000 CD 900,000 450 2100",
	}

	result, err := newTestScraper(surface).RunExtraction(context.Background(), "BBRI", 1)

	require.NoError(t, err)
	assert.Equal(t, "BBRI", result.Symbol)
	require.Len(t, result.Days, 1)
	assert.Equal(t, 1, result.Days[0].Day)
	assert.Equal(t, 1, result.DaysWithData)
	require.Len(t, result.Days[0].Rows, 1)
	assert.Equal(t, "AB", result.Days[0].Rows[0].BuyBroker)
	require.NotEmpty(t, surface.navigated)
	assert.Contains(t, surface.navigated[0], "/symbol/BBRI")
}

func TestRunExtractionEmptyDayIsNotAnError(t *testing.T) {
	surface := &fakeSurface{tableText: "no table rendered today"}

	result, err := newTestScraper(surface).RunExtraction(context.Background(), "BUMI", 1)

	require.NoError(t, err)
	require.Len(t, result.Days, 1)
	assert.Empty(t, result.Days[0].Rows)
	assert.Equal(t, 0, result.DaysWithData)
	assert.Equal(t, "no table rendered today", result.Days[0].RawText)
}

func TestRunExtractionStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	surface := &fakeSurface{tableText: ""}
	s := newTestScraper(surface)

	// Navigation happens before the per-day loop checks the context; the
	// cancelled context must surface before any day is processed.
	result, err := s.RunExtraction(ctx, "BBRI", 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	if result != nil {
		assert.Empty(t, result.Days)
	}
}

func TestSaveToCSV(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	s := newTestScraper(&fakeSurface{})
	result := &models.ExtractionResult{
		Symbol:       "BBRI",
		DaysWithData: 1,
		Days: []models.DaySummary{{
			Day:  1,
			Date: time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC),
			Rows: []models.BrokerSummaryRow{{
				BuyBroker: "AB", BuyValue: "1,000,000", BuyLot: "500", BuyAvg: "2000",
				SellBroker: "CD", SellValue: "900,000", SellLot: "450", SellAvg: "2100",
			}},
		}},
	}

	require.NoError(t, s.SaveToCSV(result))

	data, err := os.ReadFile("output/BBRI_broker_summary.csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,BuyBroker,BuyValue,BuyLot,BuyAvg,SellBroker,SellValue,SellLot,SellAvg", lines[0])
	assert.Equal(t, "2024-06-12,AB,\"1,000,000\",500,2000,CD,\"900,000\",450,2100", lines[1])
}

func TestSaveToCSVRejectsEmptyResult(t *testing.T) {
	s := newTestScraper(&fakeSurface{})

	assert.Error(t, s.SaveToCSV(nil))
	assert.Error(t, s.SaveToCSV(&models.ExtractionResult{Symbol: "BBRI"}))
}
