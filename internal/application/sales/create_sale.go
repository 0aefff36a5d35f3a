package sales

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/application/inventory"
	"github.com/AstralMoonlight/torn/internal/application/payment"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	domsales "github.com/AstralMoonlight/torn/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CreateSale registra una venta completa en una sola transacción: turno abierto, cliente y productos activos,
// disponibilidad, totales, conciliación de pagos, folio, salidas de stock, persistencia, efecto del crédito interno
// y documento tributario. Cualquier error revierte todo, incluido el folio.
func (uc *SaleUseCase) CreateSale(ctx context.Context, cashierID string, in dto.CreateSaleRequest) (resp *dto.SaleResponse, err error) {
	ctx, span := startSpan(ctx, "sales.CreateSale", trace.WithAttributes(
		attribute.String("cashier_id", cashierID),
		attribute.Int("doc_type", in.DocType),
		attribute.Int("lines", len(in.Lines)),
	))
	defer func() { endSpan(span, err) }()

	if cashierID == "" {
		return nil, domain.ErrUnauthorized
	}
	docType := entity.DocType(in.DocType)
	if !docType.IsSaleDocument() || in.CustomerID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		if l.ProductID == "" || !l.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
	}
	tenders := make([]payment.Tender, 0, len(in.Tenders))
	for _, t := range in.Tenders {
		tenders = append(tenders, payment.Tender{Method: entity.PaymentMethod(t.Method), Amount: t.Amount, Reference: t.Reference})
	}

	sale := &entity.Sale{
		ID:         uuid.New().String(),
		DocType:    docType,
		CustomerID: in.CustomerID,
		CashierID:  cashierID,
	}
	var (
		lines    []*entity.SaleLine
		payments []*entity.Payment
		rec      payment.Reconciliation
	)

	err = uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := uc.cash.RequireOpen(ctx, repos, cashierID); err != nil {
			return err
		}
		// Con la caja tomada: la venta y sus pagos quedan dentro de la sesión que la cuadrará.
		now := uc.now()
		sale.CreatedAt = now
		issuer, err := loadIssuer(ctx, repos)
		if err != nil {
			return err
		}
		customer, err := repos.Customers.GetByID(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.NewNotFound("cliente", in.CustomerID)
		}
		if !customer.Active {
			return domain.NewPrecondition(domain.ErrInactive, "cliente", customer.ID)
		}

		products := make(map[string]*entity.Product, len(in.Lines))
		for _, l := range in.Lines {
			if _, ok := products[l.ProductID]; ok {
				continue
			}
			p, err := repos.Products.GetByID(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NewNotFound("producto", l.ProductID)
			}
			if !p.Active {
				return domain.NewPrecondition(domain.ErrInactive, "producto", p.ID)
			}
			products[p.ID] = p
		}

		if err := uc.checkAvailability(ctx, repos, in.Lines); err != nil {
			return err
		}

		subtotals := make([]decimal.Decimal, 0, len(in.Lines))
		for _, l := range in.Lines {
			p := products[l.ProductID]
			line := &entity.SaleLine{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				ProductID: p.ID,
				Quantity:  l.Quantity,
				UnitPrice: p.NetPrice,
				Subtotal:  domsales.LineSubtotal(l.Quantity, p.NetPrice),
			}
			lines = append(lines, line)
			subtotals = append(subtotals, line.Subtotal)
		}
		totals := domsales.ComputeTotals(subtotals, docType.TaxRate(uc.cfg.TaxRate), uc.cfg.RoundingScale)
		sale.NetAmount, sale.TaxRate, sale.TaxAmount, sale.TotalAmount = totals.Net, totals.TaxRate, totals.Tax, totals.Total

		rec, err = uc.payments.Reconcile(totals.Total, tenders)
		if err != nil {
			return err
		}

		alloc, err := uc.allocate(ctx, repos, docType, uc.cfg.SaleProvisionalFallback)
		if err != nil {
			return err
		}
		sale.Folio, sale.Provisional = alloc.Folio, alloc.Provisional

		for _, line := range lines {
			if _, err := uc.ledger.ApplyMovement(ctx, repos, inventory.MovementInput{
				ProductID: line.ProductID,
				Direction: entity.DirectionOUT,
				Reason:    entity.ReasonSale,
				Quantity:  line.Quantity,
				SaleID:    sale.ID,
				CreatedBy: cashierID,
			}); err != nil {
				return err
			}
		}

		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}
		for _, line := range lines {
			if err := repos.Sales.CreateLine(ctx, line); err != nil {
				return err
			}
		}
		payments = buildPayments(sale.ID, tenders, now)
		for _, p := range payments {
			if err := repos.Payments.Create(ctx, p); err != nil {
				return err
			}
		}
		if err := uc.payments.ApplyEffects(ctx, repos, customer.ID, tenders, payment.EffectSale); err != nil {
			return err
		}

		if err := domsales.ValidateDocument(sale, lines); err != nil {
			return fmt.Errorf("venta %s: %w", sale.ID, err)
		}
		doc, err := uc.issuer.Render(ctx, DocumentInput{
			Sale:     sale,
			Lines:    lines,
			Products: products,
			Issuer:   issuer,
			Customer: customer,
		})
		if err != nil {
			return &domain.IssuanceFailedError{Err: err}
		}
		sale.DocumentBody, sale.DocumentDigest = doc.Body, doc.Digest
		return repos.Sales.AttachDocument(ctx, sale.ID, doc.Body, doc.Digest)
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("cashier_id", cashierID).Msg("venta rechazada")
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Int("doc_type", int(sale.DocType)).
		Int64("folio", sale.Folio).
		Bool("provisional", sale.Provisional).
		Str("total", sale.TotalAmount.String()).
		Str("cashier_id", cashierID).
		Msg("venta registrada")
	out := toSaleResponse(sale, lines, payments)
	out.Overpaid = rec.Overpaid
	return &out, nil
}

// checkAvailability agrega las cantidades por producto que guarda el stock (variantes suman al padre)
// y bloquea esas filas en orden de ID, así dos ventas concurrentes nunca se bloquean en orden inverso.
func (uc *SaleUseCase) checkAvailability(ctx context.Context, repos repository.Repositories, lines []dto.SaleLineRequest) error {
	need := make(map[string]decimal.Decimal)
	for _, l := range lines {
		holder, err := uc.ledger.ResolveHolder(ctx, repos, l.ProductID)
		if err != nil {
			return err
		}
		if holder == nil {
			continue
		}
		need[holder.ID] = need[holder.ID].Add(l.Quantity)
	}
	ids := make([]string, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := uc.ledger.CheckAvailable(ctx, repos, id, need[id]); err != nil {
			return err
		}
	}
	return nil
}

// buildPayments registra los pagos tal como se entregaron. El exceso no genera filas: se informa en Overpaid
// y el arqueo lo muestra como diferencia.
func buildPayments(saleID string, tenders []payment.Tender, now time.Time) []*entity.Payment {
	out := make([]*entity.Payment, 0, len(tenders))
	for _, t := range tenders {
		out = append(out, &entity.Payment{
			ID:        uuid.New().String(),
			SaleID:    saleID,
			Method:    t.Method,
			Amount:    t.Amount,
			Reference: t.Reference,
			CreatedAt: now,
		})
	}
	return out
}
