package repository

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SaleRepository persistencia de ventas, notas de crédito y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateLine(ctx context.Context, line *entity.SaleLine) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetLines(ctx context.Context, saleID string) ([]*entity.SaleLine, error)
	// ReturnedQuantities suma, por producto, lo ya devuelto en notas de crédito de la venta original.
	ReturnedQuantities(ctx context.Context, originalSaleID string) (map[string]decimal.Decimal, error)
	AttachDocument(ctx context.Context, saleID string, body []byte, digest string) error
}
