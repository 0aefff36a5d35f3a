package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.IssuerRepository = (*IssuerRepo)(nil)

// IssuerRepo perfil del emisor (fila única).
type IssuerRepo struct {
	q Querier
}

// NewIssuerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIssuerRepository(q Querier) *IssuerRepo {
	return &IssuerRepo{q: q}
}

func (r *IssuerRepo) Get(ctx context.Context) (*entity.IssuerProfile, error) {
	var p entity.IssuerProfile
	err := r.q.QueryRow(ctx, `
		SELECT id, tax_id, legal_name, business_line, activity_code, address, commune, city
		FROM issuer_profile ORDER BY id LIMIT 1`).Scan(
		&p.ID, &p.TaxID, &p.LegalName, &p.BusinessLine, &p.ActivityCode, &p.Address, &p.Commune, &p.City,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get issuer: %w", err)
	}
	return &p, nil
}

func (r *IssuerRepo) Save(ctx context.Context, p *entity.IssuerProfile) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM issuer_profile WHERE id <> $1`, p.ID); err != nil {
		return fmt.Errorf("save issuer: %w", err)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO issuer_profile (id, tax_id, legal_name, business_line, activity_code, address, commune, city)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			tax_id = EXCLUDED.tax_id, legal_name = EXCLUDED.legal_name,
			business_line = EXCLUDED.business_line, activity_code = EXCLUDED.activity_code,
			address = EXCLUDED.address, commune = EXCLUDED.commune, city = EXCLUDED.city`,
		p.ID, p.TaxID, p.LegalName, p.BusinessLine, p.ActivityCode, p.Address, p.Commune, p.City,
	)
	if err != nil {
		return fmt.Errorf("save issuer: %w", err)
	}
	return nil
}
