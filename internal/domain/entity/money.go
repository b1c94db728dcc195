package entity

import "github.com/shopspring/decimal"

// maxAmount tope de una columna NUMERIC(12,2).
var maxAmount = decimal.New(1, 10)

// ValidAmount informa si el importe se guarda sin redondeo: como mucho dos decimales y
// valor absoluto menor que 10^10.
func ValidAmount(d decimal.Decimal) bool {
	return d.Equal(d.Round(2)) && d.Abs().LessThan(maxAmount)
}
