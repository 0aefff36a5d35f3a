package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea pedida en una venta o devolución.
type SaleLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
}

// TenderRequest un medio de pago entregado.
type TenderRequest struct {
	Method    string          `json:"method" validate:"required,oneof=EFECTIVO DEBITO CREDITO TRANSFERENCIA CREDITO_INTERNO"`
	Amount    decimal.Decimal `json:"amount" validate:"gt=0"`
	Reference string          `json:"reference,omitempty" validate:"max=120"`
}

// CreateSaleRequest cuerpo de POST /api/sales. El cajero se toma del token, nunca del cuerpo.
type CreateSaleRequest struct {
	CustomerID string            `json:"customer_id" validate:"required"`
	DocType    int               `json:"doc_type" validate:"required,oneof=33 34 39"`
	Lines      []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	Tenders    []TenderRequest   `json:"tenders" validate:"dive"`
}

// SaleLineResponse línea del documento emitido.
type SaleLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PaymentResponse pago registrado.
type PaymentResponse struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// SaleResponse documento de venta (o nota de crédito en GET /api/sales/:id).
type SaleResponse struct {
	SaleID        string             `json:"sale_id"`
	Folio         int64              `json:"folio"`
	Provisional   bool               `json:"provisional"`
	DocType       int                `json:"doc_type"`
	CustomerID    string             `json:"customer_id"`
	CashierID     string             `json:"cashier_id"`
	RelatedSaleID string             `json:"related_sale_id,omitempty"`
	NetAmount     decimal.Decimal    `json:"net_amount"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	TaxAmount     decimal.Decimal    `json:"tax_amount"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Overpaid      decimal.Decimal    `json:"overpaid"`
	Digest        string             `json:"document_digest,omitempty"`
	Lines         []SaleLineResponse `json:"lines"`
	Payments      []PaymentResponse  `json:"payments,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// CreateReturnRequest cuerpo de POST /api/sales/returns.
type CreateReturnRequest struct {
	OriginalSaleID string            `json:"original_sale_id" validate:"required"`
	Lines          []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
	Reason         string            `json:"reason" validate:"required,max=255"`
	RefundMethod   string            `json:"refund_method" validate:"required,oneof=EFECTIVO DEBITO CREDITO TRANSFERENCIA CREDITO_INTERNO"`
}

// ReturnResponse nota de crédito emitida.
type ReturnResponse struct {
	ReversalSaleID string             `json:"reversal_sale_id"`
	Folio          int64              `json:"folio"`
	Provisional    bool               `json:"provisional"`
	RelatedSaleID  string             `json:"related_sale_id"`
	NetAmount      decimal.Decimal    `json:"net_amount"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	Lines          []SaleLineResponse `json:"lines"`
}
