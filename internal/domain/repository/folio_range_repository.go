package repository

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
)

// FolioRangeRepository puerto de persistencia de rangos de folio (CAF).
type FolioRangeRepository interface {
	// LockDocType serializa las altas de rangos de un tipo hasta el fin de la transacción.
	LockDocType(ctx context.Context, docType entity.DocType) error
	Create(ctx context.Context, r *entity.FolioRange) error
	ListByDocType(ctx context.Context, docType entity.DocType) ([]*entity.FolioRange, error)
	ListAll(ctx context.Context) ([]*entity.FolioRange, error)
	CountByDocType(ctx context.Context, docType entity.DocType) (int, error)
	// AllocateNext bloquea el rango más antiguo con capacidad, incrementa last_used y devuelve
	// el rango ya actualizado (LastUsed = folio asignado). Devuelve nil si ningún rango tiene capacidad.
	AllocateNext(ctx context.Context, docType entity.DocType) (*entity.FolioRange, error)
	// NextProvisional numeración de respaldo, separada del espacio fiscal.
	NextProvisional(ctx context.Context, docType entity.DocType) (int64, error)
}
