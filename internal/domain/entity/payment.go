package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod medio de pago.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "EFECTIVO"
	PaymentDebit       PaymentMethod = "DEBITO"
	PaymentCredit      PaymentMethod = "CREDITO"
	PaymentTransfer    PaymentMethod = "TRANSFERENCIA"
	PaymentStoreCredit PaymentMethod = "CREDITO_INTERNO" // fiado: aumenta la deuda del cliente
)

// IsValid indica si el medio de pago es conocido.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentDebit, PaymentCredit, PaymentTransfer, PaymentStoreCredit:
		return true
	}
	return false
}

// IsCash el efectivo es el único medio que entra al arqueo de caja.
func (m PaymentMethod) IsCash() bool { return m == PaymentCash }

// IsStoreCredit indica crédito interno (cuenta corriente del cliente).
func (m PaymentMethod) IsStoreCredit() bool { return m == PaymentStoreCredit }

// Payment pago registrado contra un documento. En devoluciones el monto es negativo.
type Payment struct {
	ID        string
	SaleID    string
	Method    PaymentMethod
	Amount    decimal.Decimal
	Reference string
	CreatedAt time.Time
}
