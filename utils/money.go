package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// DecimalFromFloat converts an operator-supplied float into a money decimal,
// rounded to 2 places. Ledger math stays in decimal from here on.
func DecimalFromFloat(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x).Round(2)
}
