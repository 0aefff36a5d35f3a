package folio

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RangeUseCase administración de rangos de folio: alta sin superposición y listado con capacidad.
type RangeUseCase struct {
	tx  repository.TxRunner
	log zerolog.Logger
}

// NewRangeUseCase construye el caso de uso.
func NewRangeUseCase(tx repository.TxRunner, log zerolog.Logger) *RangeUseCase {
	return &RangeUseCase{tx: tx, log: log}
}

// Register valida y guarda un rango nuevo. El rango parte sin folios usados (LastUsed = RangeStart-1).
func (uc *RangeUseCase) Register(ctx context.Context, in dto.RegisterFolioRangeRequest) (*dto.FolioRangeResponse, error) {
	docType := entity.DocType(in.DocType)
	if !docType.IsValid() || in.RangeStart < 1 || in.RangeEnd < in.RangeStart {
		return nil, domain.ErrInvalidInput
	}
	fr := &entity.FolioRange{
		ID:               uuid.New().String(),
		DocType:          docType,
		RangeStart:       in.RangeStart,
		RangeEnd:         in.RangeEnd,
		LastUsed:         in.RangeStart - 1,
		AuthorizationXML: in.AuthorizationXML,
		CreatedAt:        time.Now(),
	}
	err := uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		// Sin el candado dos altas concurrentes leen la misma lista y ambas pasan la validación.
		if err := repos.Folios.LockDocType(ctx, docType); err != nil {
			return err
		}
		existing, err := repos.Folios.ListByDocType(ctx, docType)
		if err != nil {
			return err
		}
		for _, r := range existing {
			if r.Overlaps(fr.RangeStart, fr.RangeEnd) {
				return fmt.Errorf("%w: %w (existente %d-%d)", domain.ErrConflict, domain.ErrFolioRangeOverlap, r.RangeStart, r.RangeEnd)
			}
		}
		return repos.Folios.Create(ctx, fr)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int("doc_type", in.DocType).Int64("desde", fr.RangeStart).Int64("hasta", fr.RangeEnd).Msg("rango de folios registrado")
	resp := toRangeResponse(fr)
	return &resp, nil
}

// List devuelve los rangos, filtrados por tipo si docType > 0, ordenados por tipo y antigüedad.
func (uc *RangeUseCase) List(ctx context.Context, docType int) ([]dto.FolioRangeResponse, error) {
	var ranges []*entity.FolioRange
	err := uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		if docType > 0 {
			ranges, err = repos.Folios.ListByDocType(ctx, entity.DocType(docType))
		} else {
			ranges, err = repos.Folios.ListAll(ctx)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].DocType != ranges[j].DocType {
			return ranges[i].DocType < ranges[j].DocType
		}
		return ranges[i].CreatedAt.Before(ranges[j].CreatedAt)
	})
	out := make([]dto.FolioRangeResponse, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, toRangeResponse(r))
	}
	return out, nil
}

func toRangeResponse(r *entity.FolioRange) dto.FolioRangeResponse {
	return dto.FolioRangeResponse{
		ID:         r.ID,
		DocType:    int(r.DocType),
		RangeStart: r.RangeStart,
		RangeEnd:   r.RangeEnd,
		LastUsed:   r.LastUsed,
		Remaining:  r.Remaining(),
		CreatedAt:  r.CreatedAt,
	}
}
