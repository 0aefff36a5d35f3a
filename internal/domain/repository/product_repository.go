package repository

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product.
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error
	ListByParent(ctx context.Context, parentID string) ([]*entity.Product, error)
	SetActive(ctx context.Context, ids []string, active bool) (int, error)
}
