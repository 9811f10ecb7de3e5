// Package models defines the data structures used in the application.
package models

import "time"

// BrokerSummaryRow represents one row of the broker summary table.
// Numeric fields are kept as display strings exactly as rendered
// (thousands separators included) so the output matches the page.
type BrokerSummaryRow struct {
	BuyBroker  string
	BuyValue   string
	BuyLot     string
	BuyAvg     string
	SellBroker string
	SellValue  string
	SellLot    string
	SellAvg    string
}

// DaySummary holds the rows extracted for a single trading day.
// Day is 1-based and chronological across the requested range.
type DaySummary struct {
	Day     int
	Date    time.Time
	Rows    []BrokerSummaryRow
	RawText string
}

// ExtractionResult is the aggregate of a multi-day extraction run.
type ExtractionResult struct {
	Symbol       string
	Days         []DaySummary
	DaysWithData int
}
