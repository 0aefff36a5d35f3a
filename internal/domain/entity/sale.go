package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale documento de venta o de reversa (nota de crédito).
// Invariante: TotalAmount = NetAmount + TaxAmount, con TaxAmount redondeado una sola vez sobre el neto sumado.
type Sale struct {
	ID             string
	Folio          int64
	Provisional    bool // folio tomado del contador provisional (sin CAF)
	DocType        DocType
	NetAmount      decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	CustomerID     string
	CashierID      string
	RelatedSaleID  string // solo en notas de crédito: venta original
	Reason         string // motivo de la devolución
	DocumentBody   []byte // XML del DTE entregado por el emisor
	DocumentDigest string
	CreatedAt      time.Time
}

// IsReturn indica si el documento es una reversa de otra venta.
func (s *Sale) IsReturn() bool {
	return s.RelatedSaleID != "" || s.DocType == DocTypeNotaCredito
}

// SaleLine línea de un documento. Subtotal = Quantity * UnitPrice (neto).
type SaleLine struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
