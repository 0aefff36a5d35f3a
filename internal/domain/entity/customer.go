package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer cliente / receptor de documentos.
// CurrentBalance es la deuda en cuenta corriente (positivo = debe); solo la mueven los pagos con crédito interno.
type Customer struct {
	ID             string
	TaxID          string // RUT
	Name           string
	BusinessLine   string // giro
	Address        string
	Commune        string
	City           string
	Email          string
	Active         bool
	CurrentBalance decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
