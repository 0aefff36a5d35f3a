package sales

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
)

// GetSale devuelve un documento con sus líneas y pagos.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	var (
		sale     *entity.Sale
		lines    []*entity.SaleLine
		payments []*entity.Payment
	)
	err := uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		sale, err = repos.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NewNotFound("venta", id)
		}
		if lines, err = repos.Sales.GetLines(ctx, id); err != nil {
			return err
		}
		payments, err = repos.Payments.ListBySale(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := toSaleResponse(sale, lines, payments)
	return &out, nil
}

func toSaleResponse(s *entity.Sale, lines []*entity.SaleLine, payments []*entity.Payment) dto.SaleResponse {
	out := dto.SaleResponse{
		SaleID:        s.ID,
		Folio:         s.Folio,
		Provisional:   s.Provisional,
		DocType:       int(s.DocType),
		CustomerID:    s.CustomerID,
		CashierID:     s.CashierID,
		RelatedSaleID: s.RelatedSaleID,
		NetAmount:     s.NetAmount,
		TaxRate:       s.TaxRate,
		TaxAmount:     s.TaxAmount,
		TotalAmount:   s.TotalAmount,
		Digest:        s.DocumentDigest,
		Lines:         toLineResponses(lines),
		CreatedAt:     s.CreatedAt,
	}
	for _, p := range payments {
		out.Payments = append(out.Payments, dto.PaymentResponse{Method: string(p.Method), Amount: p.Amount, Reference: p.Reference})
	}
	return out
}

func toLineResponses(lines []*entity.SaleLine) []dto.SaleLineResponse {
	out := make([]dto.SaleLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.SaleLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		})
	}
	return out
}

// GetDocument XML del DTE emitido para la venta o nota de crédito.
func (uc *SaleUseCase) GetDocument(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	var body []byte
	err := uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		sale, err := repos.Sales.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil || len(sale.DocumentBody) == 0 {
			return domain.NewNotFound("documento", id)
		}
		body = sale.DocumentBody
		return nil
	})
	return body, err
}
