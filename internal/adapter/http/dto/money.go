package dto

import (
	"strings"

	"marketplace-wallet/pkg/apperror"

	"github.com/shopspring/decimal"
)

// currencyExponents maps ISO 4217 codes to their minor-unit exponent.
// Currencies absent from the map use the default of 2.
var currencyExponents = map[string]int32{
	"BHD": 3,
	"JOD": 3,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"CLP": 0,
	"ISK": 0,
}

const defaultExponent = 2

// CurrencyExponent returns the number of decimal places for a currency.
func CurrencyExponent(currency string) int32 {
	if exp, ok := currencyExponents[strings.ToUpper(currency)]; ok {
		return exp
	}
	return defaultExponent
}

// ParseAmount converts a decimal amount string ("25.00", "-3.5") into int64
// minor units for the currency. Rejects malformed input and amounts with
// more precision than the currency carries.
func ParseAmount(raw, currency string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperror.ErrInvalidAmount()
	}
	exp := CurrencyExponent(currency)
	scaled := d.Shift(exp)
	if !scaled.IsInteger() {
		return 0, apperror.ErrInvalidAmount()
	}
	if !scaled.BigInt().IsInt64() {
		return 0, apperror.ErrInvalidAmount()
	}
	return scaled.IntPart(), nil
}

// FormatAmount renders int64 minor units as a decimal string for the
// currency ("2500" USD -> "25.00").
func FormatAmount(minor int64, currency string) string {
	return decimal.New(minor, -CurrencyExponent(currency)).StringFixed(CurrencyExponent(currency))
}
