package sales

import (
	"context"
	"time"

	"github.com/AstralMoonlight/torn/internal/application/cash"
	"github.com/AstralMoonlight/torn/internal/application/folio"
	"github.com/AstralMoonlight/torn/internal/application/inventory"
	"github.com/AstralMoonlight/torn/internal/application/payment"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/AstralMoonlight/torn/internal/application/sales"

// SaleUseCase coordinador de ventas y devoluciones.
type SaleUseCase struct {
	tx       repository.TxRunner
	folios   *folio.Allocator
	ledger   *inventory.Ledger
	payments *payment.Reconciler
	cash     *cash.Manager
	issuer   DocumentIssuer
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

// NewSaleUseCase construye el coordinador.
func NewSaleUseCase(
	tx repository.TxRunner,
	folios *folio.Allocator,
	ledger *inventory.Ledger,
	payments *payment.Reconciler,
	cashManager *cash.Manager,
	issuer DocumentIssuer,
	cfg Config,
	log zerolog.Logger,
) *SaleUseCase {
	return &SaleUseCase{
		tx:       tx,
		folios:   folios,
		ledger:   ledger,
		payments: payments,
		cash:     cashManager,
		issuer:   issuer,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// loadIssuer exige que el emisor esté configurado.
func loadIssuer(ctx context.Context, repos repository.Repositories) (*entity.IssuerProfile, error) {
	issuer, err := repos.Issuer.Get(ctx)
	if err != nil {
		return nil, err
	}
	if issuer == nil {
		return nil, domain.NewPrecondition(domain.ErrIssuerNotConfigured, "", "")
	}
	return issuer, nil
}

func (uc *SaleUseCase) allocate(ctx context.Context, repos repository.Repositories, docType entity.DocType, fallback bool) (folio.Allocation, error) {
	if fallback {
		return uc.folios.AllocateOrProvisional(ctx, repos, docType)
	}
	return uc.folios.Allocate(ctx, repos, docType)
}

// startSpan toma el tracer del provider global vigente en cada llamada.
func startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, opts...)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
