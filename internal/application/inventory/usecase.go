package inventory

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	invdomain "github.com/AstralMoonlight/torn/internal/domain/inventory"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/rs/zerolog"
)

// RegisterMovementUseCase movimientos manuales (compras y ajustes), kardex y verificación del stock.
type RegisterMovementUseCase struct {
	tx     repository.TxRunner
	ledger *Ledger
	log    zerolog.Logger
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(tx repository.TxRunner, ledger *Ledger, log zerolog.Logger) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{tx: tx, ledger: ledger, log: log}
}

// ListMovements kardex del producto que guarda el stock de productID.
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, productID string, page dto.PageRequest) ([]dto.MovementResponse, error) {
	page.DefaultPage()
	var movs []*entity.StockMovement
	err := uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		holder, err := uc.ledger.ResolveHolder(ctx, repos, productID)
		if err != nil {
			return err
		}
		if holder == nil {
			return nil
		}
		movs, err = repos.Movements.ListByProduct(ctx, holder.ID, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// Verify reconstruye el saldo desde el kardex y lo compara con current_stock.
func (uc *RegisterMovementUseCase) Verify(ctx context.Context, productID string) (*dto.LedgerCheckResponse, error) {
	var resp *dto.LedgerCheckResponse
	err := uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		holder, err := uc.ledger.ResolveHolder(ctx, repos, productID)
		if err != nil {
			return err
		}
		if holder == nil {
			return domain.NewPrecondition(domain.ErrNotStockTracked, "producto", productID)
		}
		movs, err := repos.Movements.ListByProduct(ctx, holder.ID, 0, 0)
		if err != nil {
			return err
		}
		res := invdomain.Replay(movs)
		replayed := res.Balance
		if res.Count == 0 {
			replayed = holder.CurrentStock
		}
		drift := holder.CurrentStock.Sub(replayed)
		resp = &dto.LedgerCheckResponse{
			ProductID:     holder.ID,
			CurrentStock:  holder.CurrentStock,
			ReplayedStock: replayed,
			Drift:         drift,
			Movements:     res.Count,
			Consistent:    drift.IsZero() && res.BrokenAt == "",
			BrokenAt:      res.BrokenAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !resp.Consistent {
		uc.log.Warn().Str("product_id", resp.ProductID).Str("drift", resp.Drift.String()).Str("broken_at", resp.BrokenAt).Msg("kardex descuadrado")
	}
	return resp, nil
}

// ToMovementResponse mapea una fila del kardex a su DTO.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Direction:    string(m.Direction),
		Reason:       string(m.Reason),
		Quantity:     m.Quantity,
		BalanceAfter: m.BalanceAfter,
		SaleID:       m.SaleID,
		Notes:        m.Notes,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}
