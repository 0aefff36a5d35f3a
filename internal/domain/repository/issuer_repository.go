package repository

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
)

// IssuerRepository datos del emisor. Get devuelve (nil, nil) si no está configurado.
type IssuerRepository interface {
	Get(ctx context.Context) (*entity.IssuerProfile, error)
	// Save reemplaza el perfil (hay uno solo).
	Save(ctx context.Context, p *entity.IssuerProfile) error
}
