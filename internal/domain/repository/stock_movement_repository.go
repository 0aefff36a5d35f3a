package repository

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
)

// StockMovementRepository kardex append-only: solo inserción y lectura.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve los movimientos en orden de inserción; limit <= 0 devuelve todos.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error)
}
