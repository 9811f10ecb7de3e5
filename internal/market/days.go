// Package market holds the exchange-calendar helpers and the broker
// summary table parser.
package market

import (
	"time"

	"stockbit-analyzer/internal/utils"
)

// TradingDays returns the n most recent business days up to and including
// today (or the most recent prior business day when today is a weekend),
// oldest first. The walk is capped at 2n+2 scanned calendar days — two
// extra to cover a leading weekend — so a bad n can never loop forever;
// hitting the cap logs a warning and returns what was collected.
func TradingDays(now time.Time, n int, logger *utils.Logger) []time.Time {
	if n <= 0 {
		return nil
	}

	maxScan := 2*n + 2
	days := make([]time.Time, 0, n)
	cursor := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for scanned := 0; len(days) < n; scanned++ {
		if scanned >= maxScan {
			if logger != nil {
				logger.Warn("Trading day scan hit safety bound after %d days, returning %d of %d",
					maxScan, len(days), n)
			}
			break
		}
		if wd := cursor.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, cursor)
		}
		cursor = cursor.AddDate(0, 0, -1)
	}

	// Collected newest-first while walking backward; callers want
	// chronological order.
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}
	return days
}
