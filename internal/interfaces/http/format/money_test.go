package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		money    valueobject.Money
		expected string
	}{
		{"usd grouping", valueobject.MustMoney("1234.56", valueobject.USD), "$1,234.56"},
		{"usd pads cents", valueobject.MustMoney("5", valueobject.USD), "$5.00"},
		{"usd rounds half up", valueobject.MustMoney("0.25", valueobject.USD).Multiply(decimal.RequireFromString("0.5")), "$0.13"},
		{"ves grouping", valueobject.MustMoney("1234567.89", valueobject.VES), "Bs. 1.234.567,89"},
		{"ves small", valueobject.MustMoney("0.5", valueobject.VES), "Bs. 0,50"},
		{"negative", valueobject.MustMoney("-20", valueobject.USD), "-$20.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMoney(tt.money))
		})
	}
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "36,5 Bs./$", FormatRate(decimal.RequireFromString("36.50")))
}

func TestLocale(t *testing.T) {
	assert.Equal(t, "en-US", Locale(valueobject.USD).String())
	assert.Equal(t, "es-VE", Locale(valueobject.VES).String())
}
