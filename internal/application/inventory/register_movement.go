package inventory

import (
	"context"

	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
)

// RegisterMovement registra una compra (solo IN) o un ajuste (IN u OUT) en una transacción propia.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	dir := entity.Direction(in.Direction)
	reason := entity.MovementReason(in.Reason)
	if in.ProductID == "" || !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	switch reason {
	case entity.ReasonPurchase:
		if dir != entity.DirectionIN {
			return nil, domain.ErrInvalidInput
		}
	case entity.ReasonAdjustment:
		if dir != entity.DirectionIN && dir != entity.DirectionOUT {
			return nil, domain.ErrInvalidInput
		}
	default:
		// SALE y RETURN solo los generan ventas y devoluciones
		return nil, domain.ErrInvalidInput
	}

	var mov *entity.StockMovement
	err := uc.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		mov, err = uc.ledger.ApplyMovement(ctx, repos, MovementInput{
			ProductID: in.ProductID,
			Direction: dir,
			Reason:    reason,
			Quantity:  in.Quantity,
			Notes:     in.Notes,
			CreatedBy: userID,
		})
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.NewPrecondition(domain.ErrNotStockTracked, "producto", in.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", mov.ProductID).Str("reason", in.Reason).Str("quantity", in.Quantity.String()).Msg("movimiento manual registrado")
	resp := ToMovementResponse(mov)
	return &resp, nil
}
