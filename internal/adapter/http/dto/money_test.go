package dto

import (
	"testing"

	"marketplace-wallet/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		currency string
		want     int64
		wantErr  bool
	}{
		{name: "whole dollars", raw: "25.00", currency: "USD", want: 2500},
		{name: "single decimal", raw: "3.5", currency: "USD", want: 350},
		{name: "no decimals", raw: "100", currency: "USD", want: 10000},
		{name: "negative", raw: "-25.00", currency: "USD", want: -2500},
		{name: "zero", raw: "0", currency: "USD", want: 0},
		{name: "surrounding whitespace", raw: " 12.34 ", currency: "USD", want: 1234},
		{name: "yen whole units", raw: "500", currency: "JPY", want: 500},
		{name: "dinar three places", raw: "1.250", currency: "KWD", want: 1250},
		{name: "lowercase currency", raw: "2.00", currency: "usd", want: 200},
		{name: "too precise for USD", raw: "1.005", currency: "USD", wantErr: true},
		{name: "too precise for JPY", raw: "1.5", currency: "JPY", wantErr: true},
		{name: "not a number", raw: "abc", currency: "USD", wantErr: true},
		{name: "empty", raw: "", currency: "USD", wantErr: true},
		{name: "overflows int64", raw: "99999999999999999999.00", currency: "USD", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.raw, tt.currency)
			if tt.wantErr {
				require.Error(t, err)
				appErr, ok := err.(*apperror.AppError)
				require.True(t, ok)
				assert.Equal(t, "VAL_001", appErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "25.00", FormatAmount(2500, "USD"))
	assert.Equal(t, "-5.50", FormatAmount(-550, "USD"))
	assert.Equal(t, "0.00", FormatAmount(0, "USD"))
	assert.Equal(t, "500", FormatAmount(500, "JPY"))
	assert.Equal(t, "1.250", FormatAmount(1250, "KWD"))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, currency := range []string{"USD", "JPY", "KWD"} {
		formatted := FormatAmount(12345, currency)
		parsed, err := ParseAmount(formatted, currency)
		require.NoError(t, err)
		assert.Equal(t, int64(12345), parsed, currency)
	}
}

func TestCurrencyExponent(t *testing.T) {
	assert.Equal(t, int32(2), CurrencyExponent("USD"))
	assert.Equal(t, int32(2), CurrencyExponent("EUR"))
	assert.Equal(t, int32(0), CurrencyExponent("JPY"))
	assert.Equal(t, int32(3), CurrencyExponent("BHD"))
	assert.Equal(t, int32(2), CurrencyExponent("XYZ"))
}
