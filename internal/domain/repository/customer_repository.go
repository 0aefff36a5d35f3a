package repository

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	// AdjustBalance suma delta a la deuda del cliente y devuelve el saldo resultante.
	AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error)
}
