// Package issuer mantiene el perfil tributario del emisor que firma todos los documentos.
package issuer

import (
	"context"
	"fmt"
	"strings"

	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/AstralMoonlight/torn/pkg/sii"
	"github.com/rs/zerolog"
)

// profileID la tabla guarda una sola fila.
const profileID = "emisor"

// ProfileUseCase lectura y reemplazo del emisor.
type ProfileUseCase struct {
	tx  repository.TxRunner
	log zerolog.Logger
}

// NewProfileUseCase construye el caso de uso.
func NewProfileUseCase(tx repository.TxRunner, log zerolog.Logger) *ProfileUseCase {
	return &ProfileUseCase{tx: tx, log: log}
}

// Configure valida el RUT, lo normaliza y reemplaza el perfil.
func (uc *ProfileUseCase) Configure(ctx context.Context, in dto.IssuerRequest) (*dto.IssuerResponse, error) {
	rut, err := sii.NormalizeRUT(in.TaxID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := sii.ValidateRUT(rut); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if strings.TrimSpace(in.LegalName) == "" {
		return nil, domain.ErrInvalidInput
	}
	p := &entity.IssuerProfile{
		ID:           profileID,
		TaxID:        rut,
		LegalName:    strings.TrimSpace(in.LegalName),
		BusinessLine: strings.TrimSpace(in.BusinessLine),
		ActivityCode: strings.TrimSpace(in.ActivityCode),
		Address:      strings.TrimSpace(in.Address),
		Commune:      strings.TrimSpace(in.Commune),
		City:         strings.TrimSpace(in.City),
	}
	err = uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Issuer.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tax_id", p.TaxID).Str("legal_name", p.LegalName).Msg("emisor configurado")
	resp := toIssuerResponse(p)
	return &resp, nil
}

// Get devuelve el emisor; precondición fallida si aún no se configura.
func (uc *ProfileUseCase) Get(ctx context.Context) (*dto.IssuerResponse, error) {
	var p *entity.IssuerProfile
	err := uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		p, err = repos.Issuer.Get(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NewPrecondition(domain.ErrIssuerNotConfigured, "", "")
	}
	resp := toIssuerResponse(p)
	return &resp, nil
}

func toIssuerResponse(p *entity.IssuerProfile) dto.IssuerResponse {
	return dto.IssuerResponse{
		TaxID:        p.TaxID,
		LegalName:    p.LegalName,
		BusinessLine: p.BusinessLine,
		ActivityCode: p.ActivityCode,
		Address:      p.Address,
		Commune:      p.Commune,
		City:         p.City,
	}
}
