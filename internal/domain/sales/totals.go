// Package sales contiene las reglas puras de totales de documentos de venta.
package sales

import "github.com/shopspring/decimal"

// Totals montos de un documento.
type Totals struct {
	Net     decimal.Decimal
	TaxRate decimal.Decimal
	Tax     decimal.Decimal
	Total   decimal.Decimal
}

// LineSubtotal neto de una línea (cantidad * precio unitario neto), sin redondeo.
func LineSubtotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// ComputeTotals suma los netos y aplica el impuesto una sola vez sobre el total:
// Tax = round(Net * rate, scale), Total = Net + Tax. No se redondea línea a línea.
func ComputeTotals(subtotals []decimal.Decimal, rate decimal.Decimal, scale int32) Totals {
	net := decimal.Zero
	for _, s := range subtotals {
		net = net.Add(s)
	}
	tax := net.Mul(rate).Round(scale)
	return Totals{
		Net:     net,
		TaxRate: rate,
		Tax:     tax,
		Total:   net.Add(tax),
	}
}
