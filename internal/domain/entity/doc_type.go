package entity

import "github.com/shopspring/decimal"

// DocType tipo de documento tributario electrónico (SII). Cada tipo tiene su propia familia de rangos de folio.
type DocType int

const (
	DocTypeFactura       DocType = 33
	DocTypeFacturaExenta DocType = 34
	DocTypeBoleta        DocType = 39
	DocTypeNotaCredito   DocType = 61
)

// IsSaleDocument indica si el tipo puede emitirse desde una venta.
func (t DocType) IsSaleDocument() bool {
	switch t {
	case DocTypeFactura, DocTypeFacturaExenta, DocTypeBoleta:
		return true
	}
	return false
}

// IsValid indica si el tipo es uno de los soportados.
func (t DocType) IsValid() bool {
	return t.IsSaleDocument() || t == DocTypeNotaCredito
}

// TaxRate devuelve la tasa aplicable al tipo: las facturas exentas no llevan IVA.
func (t DocType) TaxRate(configured decimal.Decimal) decimal.Decimal {
	if t == DocTypeFacturaExenta {
		return decimal.Zero
	}
	return configured
}
