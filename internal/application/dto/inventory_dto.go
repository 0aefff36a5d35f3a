package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest entrada manual al kardex (compras y ajustes). Las ventas y devoluciones no pasan por aquí.
type RegisterMovementRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Direction string          `json:"direction" validate:"required,oneof=IN OUT"`
	Reason    string          `json:"reason" validate:"required,oneof=PURCHASE ADJUSTMENT"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	Notes     string          `json:"notes,omitempty" validate:"max=255"`
}

// MovementResponse fila del kardex.
type MovementResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Direction    string          `json:"direction"`
	Reason       string          `json:"reason"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	SaleID       string          `json:"sale_id,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	CreatedBy    string          `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LedgerCheckResponse resultado de reconstruir el stock desde el kardex.
type LedgerCheckResponse struct {
	ProductID     string          `json:"product_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	ReplayedStock decimal.Decimal `json:"replayed_stock"`
	Drift         decimal.Decimal `json:"drift"`
	Movements     int             `json:"movements"`
	Consistent    bool            `json:"consistent"`
	BrokenAt      string          `json:"broken_at,omitempty"`
}

// DeactivateProductResponse productos desactivados (raíz y variantes).
type DeactivateProductResponse struct {
	RootID      string   `json:"root_id"`
	Deactivated []string `json:"deactivated"`
}
