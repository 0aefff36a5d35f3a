package sales

import (
	"context"
	"fmt"

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

// CreateReturn emite una nota de crédito contra una venta: restituye stock, reembolsa por el medio pedido
// (negativo en pagos) y, si es crédito interno, descuenta la deuda del cliente. No exige turno abierto.
func (uc *SaleUseCase) CreateReturn(ctx context.Context, cashierID string, in dto.CreateReturnRequest) (resp *dto.ReturnResponse, err error) {
	ctx, span := startSpan(ctx, "sales.CreateReturn", trace.WithAttributes(
		attribute.String("cashier_id", cashierID),
		attribute.String("original_sale_id", in.OriginalSaleID),
	))
	defer func() { endSpan(span, err) }()

	if cashierID == "" {
		return nil, domain.ErrUnauthorized
	}
	method := entity.PaymentMethod(in.RefundMethod)
	if in.OriginalSaleID == "" || len(in.Lines) == 0 || in.Reason == "" || !method.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	requested := make(map[string]decimal.Decimal)
	order := make([]string, 0, len(in.Lines))
	for _, l := range in.Lines {
		if l.ProductID == "" || !l.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		if _, ok := requested[l.ProductID]; !ok {
			order = append(order, l.ProductID)
		}
		requested[l.ProductID] = requested[l.ProductID].Add(l.Quantity)
	}

	reversal := &entity.Sale{
		ID:            uuid.New().String(),
		DocType:       entity.DocTypeNotaCredito,
		CashierID:     cashierID,
		RelatedSaleID: in.OriginalSaleID,
		Reason:        in.Reason,
	}
	var lines []*entity.SaleLine

	err = uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		// El reembolso en efectivo cuenta en el arqueo del cajero: se serializa con su cierre.
		if err := repos.CashSessions.LockCashier(ctx, cashierID); err != nil {
			return err
		}
		now := uc.now()
		reversal.CreatedAt = now
		original, err := repos.Sales.GetForUpdate(ctx, in.OriginalSaleID)
		if err != nil {
			return err
		}
		if original == nil {
			return domain.NewNotFound("venta", in.OriginalSaleID)
		}
		if original.IsReturn() {
			return domain.NewPrecondition(domain.ErrReturnOfCreditNote, "venta", original.ID)
		}
		reversal.CustomerID = original.CustomerID

		originalLines, err := repos.Sales.GetLines(ctx, original.ID)
		if err != nil {
			return err
		}
		sold := make(map[string]decimal.Decimal)
		price := make(map[string]decimal.Decimal)
		for _, l := range originalLines {
			sold[l.ProductID] = sold[l.ProductID].Add(l.Quantity)
			if _, ok := price[l.ProductID]; !ok {
				price[l.ProductID] = l.UnitPrice
			}
		}
		returned, err := repos.Sales.ReturnedQuantities(ctx, original.ID)
		if err != nil {
			return err
		}

		subtotals := make([]decimal.Decimal, 0, len(order))
		for _, productID := range order {
			qty := requested[productID]
			returnable := sold[productID].Sub(returned[productID])
			if qty.GreaterThan(returnable) {
				return &domain.ReturnExceedsSaleError{ProductID: productID, Requested: qty, Returnable: returnable}
			}
			line := &entity.SaleLine{
				ID:        uuid.New().String(),
				SaleID:    reversal.ID,
				ProductID: productID,
				Quantity:  qty,
				UnitPrice: price[productID],
				Subtotal:  domsales.LineSubtotal(qty, price[productID]),
			}
			lines = append(lines, line)
			subtotals = append(subtotals, line.Subtotal)
		}
		totals := domsales.ComputeTotals(subtotals, original.TaxRate, uc.cfg.RoundingScale)
		reversal.NetAmount, reversal.TaxRate, reversal.TaxAmount, reversal.TotalAmount = totals.Net, totals.TaxRate, totals.Tax, totals.Total

		var tenders []payment.Tender
		if totals.Total.IsPositive() {
			tenders = []payment.Tender{{Method: method, Amount: totals.Total, Reference: "devolución " + original.ID}}
		}
		if _, err := uc.payments.Reconcile(totals.Total, tenders); err != nil {
			return err
		}

		issuer, err := loadIssuer(ctx, repos)
		if err != nil {
			return err
		}
		customer, err := repos.Customers.GetByID(ctx, original.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.NewNotFound("cliente", original.CustomerID)
		}

		if _, err := uc.ledger.LockHolders(ctx, repos, order); err != nil {
			return err
		}
		products := make(map[string]*entity.Product, len(lines))
		for _, line := range lines {
			if _, err := uc.ledger.ApplyMovement(ctx, repos, inventory.MovementInput{
				ProductID: line.ProductID,
				Direction: entity.DirectionIN,
				Reason:    entity.ReasonReturn,
				Quantity:  line.Quantity,
				SaleID:    reversal.ID,
				Notes:     in.Reason,
				CreatedBy: cashierID,
			}); err != nil {
				return err
			}
			p, err := repos.Products.GetByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if p != nil {
				products[p.ID] = p
			}
		}

		alloc, err := uc.allocate(ctx, repos, entity.DocTypeNotaCredito, uc.cfg.ReturnProvisionalFallback)
		if err != nil {
			return err
		}
		reversal.Folio, reversal.Provisional = alloc.Folio, alloc.Provisional

		if err := repos.Sales.Create(ctx, reversal); err != nil {
			return err
		}
		for _, line := range lines {
			if err := repos.Sales.CreateLine(ctx, line); err != nil {
				return err
			}
		}
		for _, t := range tenders {
			if err := repos.Payments.Create(ctx, &entity.Payment{
				ID:        uuid.New().String(),
				SaleID:    reversal.ID,
				Method:    t.Method,
				Amount:    t.Amount.Neg(),
				Reference: t.Reference,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}
		if err := uc.payments.ApplyEffects(ctx, repos, customer.ID, tenders, payment.EffectReversal); err != nil {
			return err
		}

		if err := domsales.ValidateDocument(reversal, lines); err != nil {
			return fmt.Errorf("nota de crédito %s: %w", reversal.ID, err)
		}
		doc, err := uc.issuer.Render(ctx, DocumentInput{
			Sale:     reversal,
			Lines:    lines,
			Products: products,
			Issuer:   issuer,
			Customer: customer,
			Related:  original,
		})
		if err != nil {
			return &domain.IssuanceFailedError{Err: err}
		}
		reversal.DocumentBody, reversal.DocumentDigest = doc.Body, doc.Digest
		return repos.Sales.AttachDocument(ctx, reversal.ID, doc.Body, doc.Digest)
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("original_sale_id", in.OriginalSaleID).Msg("devolución rechazada")
		return nil, err
	}

	uc.log.Info().
		Str("reversal_sale_id", reversal.ID).
		Str("related_sale_id", reversal.RelatedSaleID).
		Int64("folio", reversal.Folio).
		Bool("provisional", reversal.Provisional).
		Str("total", reversal.TotalAmount.String()).
		Str("refund_method", string(method)).
		Msg("nota de crédito emitida")
	return &dto.ReturnResponse{
		ReversalSaleID: reversal.ID,
		Folio:          reversal.Folio,
		Provisional:    reversal.Provisional,
		RelatedSaleID:  reversal.RelatedSaleID,
		NetAmount:      reversal.NetAmount,
		TaxAmount:      reversal.TaxAmount,
		TotalAmount:    reversal.TotalAmount,
		Lines:          toLineResponses(lines),
	}, nil
}
