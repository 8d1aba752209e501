// Package format renders amounts for people: grouping and decimal marks
// follow the locale of each currency. Nothing here feeds back into the
// ledger; stored and computed values stay decimal.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/flowi/backend/internal/domain/shared/valueobject"
)

type style struct {
	tag    language.Tag
	symbol string
}

var styles = map[valueobject.Currency]style{
	valueobject.USD: {tag: language.AmericanEnglish, symbol: "$"},
	valueobject.VES: {tag: language.MustParse("es-VE"), symbol: "Bs. "},
}

// Locale returns the language tag used for amounts in c
func Locale(c valueobject.Currency) language.Tag {
	if s, ok := styles[c]; ok {
		return s.tag
	}
	return language.AmericanEnglish
}

// FormatMoney renders m with two decimals in its currency's locale,
// e.g. $1,234.56 or Bs. 1.234,56
func FormatMoney(m valueobject.Money) string {
	return FormatAmount(m.Amount(), m.Currency())
}

// FormatAmount renders amount as money in currency c
func FormatAmount(amount decimal.Decimal, c valueobject.Currency) string {
	s, ok := styles[c]
	if !ok {
		s = style{tag: language.AmericanEnglish, symbol: string(c) + " "}
	}
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	p := message.NewPrinter(s.tag)
	return sign + s.symbol + p.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(2)))
}

// FormatRate renders a USD to VES rate with up to four decimals
func FormatRate(rate decimal.Decimal) string {
	p := message.NewPrinter(Locale(valueobject.VES))
	return p.Sprint(number.Decimal(rate.Round(4).InexactFloat64(), number.MaxFractionDigits(4))) + " Bs./$"
}
