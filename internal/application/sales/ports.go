// Package sales coordina la venta y la devolución como una sola unidad de trabajo atómica.
package sales

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Document documento tributario ya generado por el emisor.
type Document struct {
	Body   []byte
	Digest string
}

// DocumentInput todo lo que el emisor necesita para generar el documento.
type DocumentInput struct {
	Sale     *entity.Sale
	Lines    []*entity.SaleLine
	Products map[string]*entity.Product
	Issuer   *entity.IssuerProfile
	Customer *entity.Customer
	Related  *entity.Sale // venta original, solo en notas de crédito
}

// DocumentIssuer genera el documento tributario. Un error aborta y revierte toda la transacción.
type DocumentIssuer interface {
	Render(ctx context.Context, in DocumentInput) (Document, error)
}

// Config parámetros de cálculo y de degradación de folios.
type Config struct {
	TaxRate                   decimal.Decimal
	RoundingScale             int32
	SaleProvisionalFallback   bool
	ReturnProvisionalFallback bool
}

// DefaultConfig IVA 19%, montos enteros, ventas sin folio provisional y devoluciones con respaldo.
func DefaultConfig() Config {
	return Config{
		TaxRate:                   decimal.NewFromFloat(0.19),
		RoundingScale:             0,
		SaleProvisionalFallback:   false,
		ReturnProvisionalFallback: true,
	}
}
