package standard

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TWD conversion rates used for renewal estimates.
var twdRates = map[currency.Unit]float64{
	currency.CHF: 39.60,
	currency.USD: 31.47,
	currency.GBP: 39.80,
}

var amountPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// CostCurrency guesses the currency of a free-form cost. Pounds and dollars
// are recognised by symbol or code; "free" reports ok=false; everything else
// is assumed to be an IEC price in CHF.
func CostCurrency(cost string) (unit currency.Unit, ok bool) {
	upper := strings.ToUpper(cost)
	switch {
	case strings.Contains(cost, "£") || strings.Contains(upper, "GBP"):
		return currency.GBP, true
	case strings.Contains(upper, "USD") || strings.Contains(cost, "$"):
		return currency.USD, true
	case strings.Contains(upper, "FREE"):
		return currency.Unit{}, false
	default:
		return currency.CHF, true
	}
}

// CostAmount extracts the numeric amount, ignoring separators and symbols.
func CostAmount(cost string) float64 {
	digits := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, cost)
	match := amountPattern.FindString(digits)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

// CostInTWD converts a free-form cost to New Taiwan dollars.
func CostInTWD(cost string) float64 {
	unit, ok := CostCurrency(cost)
	if !ok {
		return 0
	}
	return CostAmount(cost) * twdRates[unit]
}

// FormatTWD renders an estimate as "NT$ 12,345 (Est.)".
func FormatTWD(amount float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("NT$ %d (Est.)", int64(math.Round(amount)))
}
