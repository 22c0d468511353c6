package webdata

import "strings"

// tickerTable maps well-known company names to their stock symbols.
// Lookup is a case-insensitive substring match on the company name.
var tickerTable = map[string]string{
	"apple":     "AAPL",
	"microsoft": "MSFT",
	"google":    "GOOGL",
	"alphabet":  "GOOGL",
	"amazon":    "AMZN",
	"tesla":     "TSLA",
	"meta":      "META",
	"facebook":  "META",
	"netflix":   "NFLX",
	"nvidia":    "NVDA",
	"intel":     "INTC",
	"oracle":    "ORCL",
	"salesforce": "CRM",
	"adobe":     "ADBE",
	"ibm":       "IBM",
}

// FindTicker attempts to resolve a stock symbol for the given company name.
// Returns "" when the company is unknown (e.g. private companies).
func FindTicker(company string) string {
	lower := strings.ToLower(company)
	for name, ticker := range tickerTable {
		if strings.Contains(lower, name) {
			return ticker
		}
	}
	return ""
}
