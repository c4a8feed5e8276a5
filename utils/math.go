package utils

import "github.com/shopspring/decimal"

// RoundMoney rounds an amount to whole pennies, half away from zero
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// FormatMoney renders an amount with exactly two decimal places
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyPlaces)
}
