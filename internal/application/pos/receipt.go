package pos

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/steadymonitor/pos-api/internal/application/dto"
	"github.com/steadymonitor/pos-api/internal/domain/entity"
)

// ReceiptFormatter formatea montos del recibo según la configuración regional.
type ReceiptFormatter struct {
	printer *message.Printer
}

// NewReceiptFormatter construye el formateador; un locale inválido cae a inglés.
func NewReceiptFormatter(locale string) *ReceiptFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &ReceiptFormatter{printer: message.NewPrinter(tag)}
}

// FormatAmount devuelve el monto con separadores de miles y dos decimales.
func (f *ReceiptFormatter) FormatAmount(amount decimal.Decimal) string {
	return f.printer.Sprintf("%.2f", amount.Round(2).InexactFloat64())
}

// buildReceipt arma el resumen imprimible a partir de la venta persistida.
func buildReceipt(f *ReceiptFormatter, sale *entity.Sale, customerName string) dto.Receipt {
	lines := make([]dto.ReceiptLine, 0, len(sale.Items))
	for _, it := range sale.Items {
		lines = append(lines, dto.ReceiptLine{
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return dto.Receipt{
		SaleID:         sale.ID,
		Status:         sale.Status,
		CustomerName:   customerName,
		Cashier:        sale.CashierName,
		Department:     sale.Department,
		PaymentMethod:  sale.PaymentMethod,
		Lines:          lines,
		Total:          sale.TotalAmount,
		FormattedTotal: f.FormatAmount(sale.TotalAmount),
		CreatedAt:      sale.CreatedAt,
	}
}
