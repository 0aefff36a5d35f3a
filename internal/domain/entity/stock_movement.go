package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del movimiento de stock.
type Direction string

const (
	DirectionIN  Direction = "IN"  // entrada
	DirectionOUT Direction = "OUT" // salida
)

// Motivo del movimiento de stock.
type MovementReason string

const (
	ReasonSale       MovementReason = "SALE"
	ReasonPurchase   MovementReason = "PURCHASE"
	ReasonAdjustment MovementReason = "ADJUSTMENT"
	ReasonReturn     MovementReason = "RETURN"
)

// StockMovement fila del kardex. Inmutable: nunca se actualiza ni se borra.
// Quantity siempre es positiva; el signo lo da Direction.
type StockMovement struct {
	ID           string
	ProductID    string
	Direction    Direction
	Reason       MovementReason
	Quantity     decimal.Decimal
	BalanceAfter decimal.Decimal
	SaleID       string // vacío si no proviene de una venta o devolución
	Notes        string
	CreatedBy    string
	CreatedAt    time.Time
}

// Signed devuelve la cantidad con signo (+ entrada, - salida).
func (m *StockMovement) Signed() decimal.Decimal {
	if m.Direction == DirectionOUT {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
