// Package folio asigna folios fiscales desde los rangos autorizados (CAF).
package folio

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/rs/zerolog"
)

// Allocation folio asignado a un documento.
type Allocation struct {
	Folio       int64
	Provisional bool
	RangeID     string // vacío si es provisional
}

// Allocator entrega folios estrictamente crecientes y sin huecos dentro de la transacción del llamador.
// La fila del rango elegido queda bloqueada hasta el commit o rollback, así dos ventas nunca obtienen el mismo folio
// y un rollback devuelve el folio al rango.
type Allocator struct {
	log zerolog.Logger
}

// NewAllocator construye el asignador.
func NewAllocator(log zerolog.Logger) *Allocator {
	return &Allocator{log: log}
}

// Allocate toma el siguiente folio del rango más antiguo con capacidad.
// Sin rangos registrados devuelve una precondición (ErrNoFolioRange); con rangos agotados, RangeExhaustedError.
func (a *Allocator) Allocate(ctx context.Context, repos repository.Repositories, docType entity.DocType) (Allocation, error) {
	if !docType.IsValid() {
		return Allocation{}, fmt.Errorf("%w: tipo de documento %d", domain.ErrInvalidInput, docType)
	}
	r, err := repos.Folios.AllocateNext(ctx, docType)
	if err != nil {
		return Allocation{}, fmt.Errorf("asignar folio: %w", err)
	}
	if r != nil {
		return Allocation{Folio: r.LastUsed, RangeID: r.ID}, nil
	}

	ranges, err := repos.Folios.ListByDocType(ctx, docType)
	if err != nil {
		return Allocation{}, fmt.Errorf("listar rangos: %w", err)
	}
	if len(ranges) == 0 {
		return Allocation{}, domain.NewPrecondition(domain.ErrNoFolioRange, "tipo_documento", strconv.Itoa(int(docType)))
	}
	var last int64
	for _, fr := range ranges {
		if fr.LastUsed > last {
			last = fr.LastUsed
		}
	}
	a.log.Warn().Int("doc_type", int(docType)).Int64("last_used", last).Msg("rangos de folio agotados")
	return Allocation{}, &domain.RangeExhaustedError{DocType: int(docType), LastUsed: last}
}

// AllocateOrProvisional igual que Allocate, pero si el tipo no tiene ningún rango registrado
// toma un número del contador provisional. Un rango agotado sigue siendo error: no se degrada.
func (a *Allocator) AllocateOrProvisional(ctx context.Context, repos repository.Repositories, docType entity.DocType) (Allocation, error) {
	alloc, err := a.Allocate(ctx, repos, docType)
	if err == nil || !errors.Is(err, domain.ErrNoFolioRange) {
		return alloc, err
	}
	n, perr := repos.Folios.NextProvisional(ctx, docType)
	if perr != nil {
		return Allocation{}, fmt.Errorf("folio provisional: %w", perr)
	}
	a.log.Warn().Int("doc_type", int(docType)).Int64("folio", n).Msg("sin CAF: se emite folio provisional")
	return Allocation{Folio: n, Provisional: true}, nil
}
