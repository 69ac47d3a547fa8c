// Package money formatea importes decimales para mostrarlos en pantalla.
// El valor autoritativo siempre es decimal.Decimal; aquí solo se presenta.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter presenta importes con separadores de miles según el idioma.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter construye un formateador para el tag BCP 47 dado (ej. "en", "es-CO").
// Un tag inválido cae en inglés.
func NewFormatter(tag, symbol string) *Formatter {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.English
	}
	return &Formatter{printer: message.NewPrinter(lang), symbol: symbol}
}

// Format devuelve el importe con dos decimales y el símbolo como prefijo.
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(2).InexactFloat64()
	return f.symbol + f.printer.Sprintf("%v", number.Decimal(rounded, number.Scale(2)))
}

// Plain devuelve el importe fijo a dos decimales, sin separadores (formato de la API).
func Plain(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
