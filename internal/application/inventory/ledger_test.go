package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/application/inventory"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/AstralMoonlight/torn/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newCatalog arma: "polera" (padre, lleva stock 10) → "polera-m" (variante sin stock propio)
// y "servicio" (no controla stock).
func newCatalog() *memory.Store {
	store := memory.NewStore()
	now := time.Now()
	store.PutProduct(entity.Product{ID: "polera", SKU: "POL", Name: "Polera", NetPrice: dec("10000"),
		Active: true, TracksStock: true, CurrentStock: dec("10"), CreatedAt: now, UpdatedAt: now})
	store.PutProduct(entity.Product{ID: "polera-m", ParentID: "polera", SKU: "POL-M", Name: "Polera M",
		NetPrice: dec("10000"), Active: true, CreatedAt: now, UpdatedAt: now})
	store.PutProduct(entity.Product{ID: "servicio", SKU: "SRV", Name: "Instalación", NetPrice: dec("5000"),
		Active: true, CreatedAt: now, UpdatedAt: now})
	return store
}

func apply(store *memory.Store, l *inventory.Ledger, in inventory.MovementInput) (*entity.StockMovement, error) {
	var mov *entity.StockMovement
	err := store.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		var err error
		mov, err = l.ApplyMovement(ctx, repos, in)
		return err
	})
	return mov, err
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_SalidaDescuentaYRegistraSaldo(t *testing.T) {
	store := newCatalog()
	l := inventory.NewLedger(zerolog.Nop())

	mov, err := apply(store, l, inventory.MovementInput{
		ProductID: "polera", Direction: entity.DirectionOUT, Reason: entity.ReasonSale,
		Quantity: dec("3"), SaleID: "venta-1", CreatedBy: "cajero-1",
	})
	require.NoError(t, err)
	require.NotNil(t, mov)
	assert.Equal(t, "7", mov.BalanceAfter.String())
	assert.Equal(t, "venta-1", mov.SaleID)

	p, _ := store.Product("polera")
	assert.Equal(t, "7", p.CurrentStock.String())
	assert.Len(t, store.Movements("polera"), 1)
}

func TestApplyMovement_VarianteMueveElStockDelPadre(t *testing.T) {
	store := newCatalog()
	l := inventory.NewLedger(zerolog.Nop())

	mov, err := apply(store, l, inventory.MovementInput{
		ProductID: "polera-m", Direction: entity.DirectionOUT, Reason: entity.ReasonSale, Quantity: dec("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "polera", mov.ProductID, "el kardex queda en quien guarda el stock")
	assert.Equal(t, "variante polera-m", mov.Notes)

	p, _ := store.Product("polera")
	assert.Equal(t, "8", p.CurrentStock.String())
}

func TestApplyMovement_NuncaDejaStockNegativo(t *testing.T) {
	store := newCatalog()
	l := inventory.NewLedger(zerolog.Nop())

	_, err := apply(store, l, inventory.MovementInput{
		ProductID: "polera", Direction: entity.DirectionOUT, Reason: entity.ReasonSale, Quantity: dec("11"),
	})
	var stock *domain.InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, "10", stock.Available.String())
	assert.ErrorIs(t, err, domain.ErrConflict)

	p, _ := store.Product("polera")
	assert.Equal(t, "10", p.CurrentStock.String())
	assert.Empty(t, store.Movements("polera"))
}

func TestApplyMovement_ProductoSinControlDeStock(t *testing.T) {
	store := newCatalog()
	l := inventory.NewLedger(zerolog.Nop())

	mov, err := apply(store, l, inventory.MovementInput{
		ProductID: "servicio", Direction: entity.DirectionOUT, Reason: entity.ReasonSale, Quantity: dec("100"),
	})
	require.NoError(t, err)
	assert.Nil(t, mov)
	assert.Empty(t, store.Movements("servicio"))
}

func TestApplyMovement_ProductoInexistente(t *testing.T) {
	store := newCatalog()
	l := inventory.NewLedger(zerolog.Nop())

	_, err := apply(store, l, inventory.MovementInput{
		ProductID: "nada", Direction: entity.DirectionIN, Reason: entity.ReasonPurchase, Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyMovement_CantidadNoPositiva(t *testing.T) {
	store := newCatalog()
	l := inventory.NewLedger(zerolog.Nop())

	_, err := apply(store, l, inventory.MovementInput{
		ProductID: "polera", Direction: entity.DirectionIN, Reason: entity.ReasonPurchase, Quantity: dec("0"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckAvailable(t *testing.T) {
	store := newCatalog()
	l := inventory.NewLedger(zerolog.Nop())

	check := func(productID, qty string) error {
		return store.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
			return l.CheckAvailable(ctx, repos, productID, dec(qty))
		})
	}

	assert.NoError(t, check("polera", "10"))
	assert.NoError(t, check("polera-m", "10"))
	assert.ErrorIs(t, check("polera-m", "10.5"), domain.ErrInsufficientStock)
	assert.NoError(t, check("servicio", "99999"))
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterMovementUseCase
// ──────────────────────────────────────────────────────────────────────────────

// lockRecorder anota el orden de los SELECT ... FOR UPDATE.
type lockRecorder struct {
	repository.ProductRepository
	locked *[]string
}

func (r lockRecorder) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	*r.locked = append(*r.locked, id)
	return r.ProductRepository.GetForUpdate(ctx, id)
}

func TestLockHolders_OrdenPorIDSinDuplicados(t *testing.T) {
	store := newCatalog()
	now := time.Now()
	store.PutProduct(entity.Product{ID: "buzo", SKU: "BUZ", Name: "Buzo", NetPrice: dec("15000"),
		Active: true, TracksStock: true, CurrentStock: dec("4"), CreatedAt: now, UpdatedAt: now})
	l := inventory.NewLedger(zerolog.Nop())

	var locked, ids []string
	err := store.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		repos.Products = lockRecorder{ProductRepository: repos.Products, locked: &locked}
		var err error
		ids, err = l.LockHolders(ctx, repos, []string{"servicio", "polera-m", "buzo", "polera"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"buzo", "polera"}, ids, "la variante se resuelve al padre y no se repite")
	assert.Equal(t, []string{"buzo", "polera"}, locked)
}

func TestLockHolders_ProductoInexistente(t *testing.T) {
	store := newCatalog()
	l := inventory.NewLedger(zerolog.Nop())
	err := store.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		_, err := l.LockHolders(ctx, repos, []string{"polera", "no-existe"})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterMovement_CompraYAjuste(t *testing.T) {
	store := newCatalog()
	uc := inventory.NewRegisterMovementUseCase(store, inventory.NewLedger(zerolog.Nop()), zerolog.Nop())
	ctx := context.Background()

	in, err := uc.RegisterMovement(ctx, "bodega-1", dto.RegisterMovementRequest{
		ProductID: "polera", Direction: "IN", Reason: "PURCHASE", Quantity: dec("5"), Notes: "OC 881",
	})
	require.NoError(t, err)
	assert.Equal(t, "15", in.BalanceAfter.String())
	assert.Equal(t, "bodega-1", in.CreatedBy)

	out, err := uc.RegisterMovement(ctx, "bodega-1", dto.RegisterMovementRequest{
		ProductID: "polera-m", Direction: "OUT", Reason: "ADJUSTMENT", Quantity: dec("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "14", out.BalanceAfter.String())

	movs, err := uc.ListMovements(ctx, "polera-m", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "PURCHASE", movs[0].Reason)
	assert.Equal(t, "ADJUSTMENT", movs[1].Reason)

	page, err := uc.ListMovements(ctx, "polera", dto.PageRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ADJUSTMENT", page[0].Reason)
}

func TestRegisterMovement_MotivosReservados(t *testing.T) {
	store := newCatalog()
	uc := inventory.NewRegisterMovementUseCase(store, inventory.NewLedger(zerolog.Nop()), zerolog.Nop())
	ctx := context.Background()

	cases := []dto.RegisterMovementRequest{
		{ProductID: "polera", Direction: "OUT", Reason: "PURCHASE", Quantity: dec("1")},
		{ProductID: "polera", Direction: "OUT", Reason: "SALE", Quantity: dec("1")},
		{ProductID: "polera", Direction: "IN", Reason: "RETURN", Quantity: dec("1")},
		{ProductID: "polera", Direction: "IN", Reason: "PURCHASE", Quantity: dec("-1")},
	}
	for _, in := range cases {
		_, err := uc.RegisterMovement(ctx, "bodega-1", in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}
	assert.Empty(t, store.Movements("polera"))

	_, err := uc.RegisterMovement(ctx, "", cases[0])
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterMovement_ProductoSinStock_Precondicion(t *testing.T) {
	store := newCatalog()
	uc := inventory.NewRegisterMovementUseCase(store, inventory.NewLedger(zerolog.Nop()), zerolog.Nop())

	_, err := uc.RegisterMovement(context.Background(), "bodega-1", dto.RegisterMovementRequest{
		ProductID: "servicio", Direction: "IN", Reason: "PURCHASE", Quantity: dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrNotStockTracked)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestVerify_DetectaDescuadre(t *testing.T) {
	store := newCatalog()
	uc := inventory.NewRegisterMovementUseCase(store, inventory.NewLedger(zerolog.Nop()), zerolog.Nop())
	ctx := context.Background()

	res, err := uc.Verify(ctx, "polera")
	require.NoError(t, err)
	assert.True(t, res.Consistent, "sin movimientos el saldo actual es el de apertura")
	assert.Equal(t, 0, res.Movements)

	_, err = uc.RegisterMovement(ctx, "bodega-1", dto.RegisterMovementRequest{
		ProductID: "polera", Direction: "IN", Reason: "PURCHASE", Quantity: dec("5"),
	})
	require.NoError(t, err)

	res, err = uc.Verify(ctx, "polera-m")
	require.NoError(t, err)
	assert.True(t, res.Consistent)
	assert.Equal(t, "15", res.ReplayedStock.String())

	// alguien escribe current_stock por fuera del ledger
	p, _ := store.Product("polera")
	p.CurrentStock = dec("12")
	store.PutProduct(p)

	res, err = uc.Verify(ctx, "polera")
	require.NoError(t, err)
	assert.False(t, res.Consistent)
	assert.Equal(t, "-3", res.Drift.String())

	_, err = uc.Verify(ctx, "servicio")
	assert.ErrorIs(t, err, domain.ErrNotStockTracked)
}
