package repository

import (
	"context"
	"time"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PaymentRepository persistencia de pagos.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListBySale(ctx context.Context, saleID string) ([]*entity.Payment, error)
	// SumCashSince suma los pagos en efectivo de documentos del cajero creados desde since (incluye reversas negativas).
	SumCashSince(ctx context.Context, cashierID string, since time.Time) (decimal.Decimal, error)
}
