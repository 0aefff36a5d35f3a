package repository

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
)

// CashSessionRepository persistencia de turnos de caja.
type CashSessionRepository interface {
	// LockCashier serializa las operaciones de caja de un cajero hasta el fin de la transacción.
	LockCashier(ctx context.Context, cashierID string) error
	GetOpenByCashier(ctx context.Context, cashierID string) (*entity.CashSession, error)
	Create(ctx context.Context, session *entity.CashSession) error
	Update(ctx context.Context, session *entity.CashSession) error
}
