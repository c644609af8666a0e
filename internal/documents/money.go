package documents

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money formats amounts with a currency symbol and thousands grouping, e.g. "R 1,234.50"
type Money struct {
	symbol  string
	printer *message.Printer
}

// NewMoney creates a formatter for symbol
func NewMoney(symbol string) Money {
	return Money{symbol: symbol, printer: message.NewPrinter(language.English)}
}

func (m Money) Format(amount float64) string {
	// avoid "-0.00"
	if math.Abs(amount) < 0.005 {
		amount = 0
	}
	if m.symbol == "" {
		return m.printer.Sprintf("%.2f", amount)
	}
	return m.printer.Sprintf("%s %.2f", m.symbol, amount)
}

// Percent formats a rate such as 0.15 as "15%"
func Percent(rate float64) string {
	return fmt.Sprintf("%.4g%%", rate*100)
}
