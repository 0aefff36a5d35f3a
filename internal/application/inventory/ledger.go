package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	invdomain "github.com/AstralMoonlight/torn/internal/domain/inventory"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// profundidad máxima padre → variante que se recorre buscando quién lleva el stock.
const maxVariantDepth = 16

// MovementInput entrada para ApplyMovement.
type MovementInput struct {
	ProductID string
	Direction entity.Direction
	Reason    entity.MovementReason
	Quantity  decimal.Decimal
	SaleID    string
	Notes     string
	CreatedBy string
}

// Ledger único escritor de current_stock. Trabaja con los repositorios de la transacción del llamador
// y siempre deja una fila en el kardex por cada cambio de stock.
type Ledger struct {
	log zerolog.Logger
	now func() time.Time
}

// NewLedger construye el ledger.
func NewLedger(log zerolog.Logger) *Ledger {
	return &Ledger{log: log, now: time.Now}
}

// ResolveHolder devuelve el producto que guarda el stock de productID: él mismo si controla stock,
// si no el ancestro más cercano que lo haga. Devuelve (nil, nil) si nadie en la cadena controla stock.
func (l *Ledger) ResolveHolder(ctx context.Context, repos repository.Repositories, productID string) (*entity.Product, error) {
	p, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NewNotFound("producto", productID)
	}
	for depth := 0; depth < maxVariantDepth; depth++ {
		if p.TracksStock {
			return p, nil
		}
		if p.ParentID == "" {
			return nil, nil
		}
		parentID := p.ParentID
		p, err = repos.Products.GetByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NewNotFound("producto", parentID)
		}
	}
	return nil, nil
}

// lockHolder resuelve quién lleva el stock y bloquea su fila (SELECT FOR UPDATE).
func (l *Ledger) lockHolder(ctx context.Context, repos repository.Repositories, productID string) (*entity.Product, error) {
	holder, err := l.ResolveHolder(ctx, repos, productID)
	if err != nil || holder == nil {
		return nil, err
	}
	locked, err := repos.Products.GetForUpdate(ctx, holder.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, domain.NewNotFound("producto", holder.ID)
	}
	return locked, nil
}

// LockHolders resuelve las filas que guardan el stock de productIDs y las bloquea en orden de ID.
// Ventas y devoluciones bloquean en el mismo orden, así no se esperan mutuamente en sentido inverso.
// Devuelve los IDs bloqueados; productos sin control de stock no aportan filas.
func (l *Ledger) LockHolders(ctx context.Context, repos repository.Repositories, productIDs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(productIDs))
	ids := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		holder, err := l.ResolveHolder(ctx, repos, id)
		if err != nil {
			return nil, err
		}
		if holder == nil {
			continue
		}
		if _, ok := seen[holder.ID]; ok {
			continue
		}
		seen[holder.ID] = struct{}{}
		ids = append(ids, holder.ID)
	}
	sort.Strings(ids)
	for _, id := range ids {
		locked, err := repos.Products.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if locked == nil {
			return nil, domain.NewNotFound("producto", id)
		}
	}
	return ids, nil
}

// CheckAvailable bloquea la fila que guarda el stock y verifica que alcance para qty.
// Productos sin control de stock siempre tienen disponibilidad.
func (l *Ledger) CheckAvailable(ctx context.Context, repos repository.Repositories, productID string, qty decimal.Decimal) error {
	holder, err := l.lockHolder(ctx, repos, productID)
	if err != nil || holder == nil {
		return err
	}
	if holder.CurrentStock.LessThan(qty) {
		return &domain.InsufficientStockError{ProductID: productID, Requested: qty, Available: holder.CurrentStock}
	}
	return nil
}

// ApplyMovement aplica el movimiento sobre el stock y agrega la fila al kardex con el saldo resultante.
// Devuelve (nil, nil) si el producto no controla stock. Una salida nunca deja el saldo negativo.
func (l *Ledger) ApplyMovement(ctx context.Context, repos repository.Repositories, in MovementInput) (*entity.StockMovement, error) {
	holder, err := l.lockHolder(ctx, repos, in.ProductID)
	if err != nil || holder == nil {
		return nil, err
	}
	balance, err := invdomain.NextBalance(holder.CurrentStock, in.Direction, in.Quantity)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if balance.IsNegative() {
		return nil, &domain.InsufficientStockError{ProductID: in.ProductID, Requested: in.Quantity, Available: holder.CurrentStock}
	}
	if err := repos.Products.UpdateStock(ctx, holder.ID, balance); err != nil {
		return nil, err
	}
	notes := in.Notes
	if holder.ID != in.ProductID && notes == "" {
		notes = "variante " + in.ProductID
	}
	mov := &entity.StockMovement{
		ID:           uuid.New().String(),
		ProductID:    holder.ID,
		Direction:    in.Direction,
		Reason:       in.Reason,
		Quantity:     in.Quantity,
		BalanceAfter: balance,
		SaleID:       in.SaleID,
		Notes:        notes,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    l.now(),
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	l.log.Debug().
		Str("product_id", holder.ID).
		Str("direction", string(in.Direction)).
		Str("reason", string(in.Reason)).
		Str("balance_after", balance.String()).
		Msg("movimiento de stock")
	return mov, nil
}
