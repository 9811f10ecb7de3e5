package market

import (
	"regexp"
	"strings"

	"stockbit-analyzer/models"
)

// headerTokens is the broker summary table header as rendered, in column
// order: buy side (broker, value, lot, average) then sell side.
var headerTokens = []string{"BY", "B.val", "B.lot", "B.avg", "SL", "S.val", "S.lot", "S.avg"}

var brokerCodeRe = regexp.MustCompile(`^[A-Z]{2}$`)

// Extraction is the parse result for one day's rendered table text. The
// raw text and token sequence are retained so zero-row or partial results
// can be diagnosed without re-querying the page. A missing header is not
// an error: the caller decides whether an empty day matters.
type Extraction struct {
	RawText     string
	Tokens      []string
	HeaderFound bool
	Rows        []models.BrokerSummaryRow
}

// ParseBrokerSummary reconstructs structured rows from the free text of
// the rendered broker summary table.
//
// The text is split on whitespace and scanned for the 8-token header; rows
// follow positionally. A row is committed only when a candidate
// buy-broker token (two uppercase letters) has seven tokens after it and
// the token at offset +4 is also a broker code — requiring both code
// slots to match is what rejects value tokens that happen to look
// row-like. Otherwise the cursor advances by one token and scanning
// continues.
func ParseBrokerSummary(text string) *Extraction {
	result := &Extraction{
		RawText: text,
		Tokens:  strings.Fields(text),
	}

	start := findHeader(result.Tokens)
	if start < 0 {
		return result
	}
	result.HeaderFound = true

	i := start + len(headerTokens)
	for i < len(result.Tokens) {
		if isBrokerCode(result.Tokens[i]) && i+7 < len(result.Tokens) && isBrokerCode(result.Tokens[i+4]) {
			result.Rows = append(result.Rows, models.BrokerSummaryRow{
				BuyBroker:  result.Tokens[i],
				BuyValue:   result.Tokens[i+1],
				BuyLot:     result.Tokens[i+2],
				BuyAvg:     result.Tokens[i+3],
				SellBroker: result.Tokens[i+4],
				SellValue:  result.Tokens[i+5],
				SellLot:    result.Tokens[i+6],
				SellAvg:    result.Tokens[i+7],
			})
			i += 8
			continue
		}
		i++
	}

	return result
}

// findHeader returns the index of the first contiguous run of tokens equal
// to the table header, or -1.
func findHeader(tokens []string) int {
	for i := 0; i+len(headerTokens) <= len(tokens); i++ {
		match := true
		for j, want := range headerTokens {
			if tokens[i+j] != want {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func isBrokerCode(token string) bool {
	return brokerCodeRe.MatchString(token)
}
