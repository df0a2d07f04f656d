// Package export builds the structured documents an external renderer needs
// for client-facing quotes and payment schedules, plus CSV serialisations.
package export

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatUSD renders "1,234.56 USD".
func FormatUSD(n float64) string {
	return printer.Sprintf("%v USD", number.Decimal(n, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatMXN renders "1,234.56 MXN".
func FormatMXN(n float64) string {
	return printer.Sprintf("%v MXN", number.Decimal(n, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func formatFloat(n float64) string {
	return strconv.FormatFloat(n, 'f', 2, 64)
}
