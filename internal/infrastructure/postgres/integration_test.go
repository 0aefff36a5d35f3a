package postgres_test

import (
	"context"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/AstralMoonlight/torn/internal/application/cash"
	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/application/folio"
	"github.com/AstralMoonlight/torn/internal/application/inventory"
	"github.com/AstralMoonlight/torn/internal/application/payment"
	"github.com/AstralMoonlight/torn/internal/application/sales"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/AstralMoonlight/torn/internal/infrastructure/dte"
	"github.com/AstralMoonlight/torn/internal/infrastructure/postgres"
	"github.com/AstralMoonlight/torn/pkg/config"
)

// Pruebas contra una base real. Requieren TEST_DATABASE_URL; la base se vacía en cada prueba.

func setupDB(t *testing.T) (*pgxpool.Pool, *postgres.TxRunner) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 30}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, zerolog.Nop()))
	_, err = pool.Exec(ctx, `TRUNCATE issuer_profile, folio_ranges, provisional_counters, payments,
		stock_movements, sale_lines, sales, cash_sessions, customers, products CASCADE`)
	require.NoError(t, err)
	return pool, postgres.NewTxRunner(pool, 10*time.Second)
}

func exec(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) {
	t.Helper()
	_, err := pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

func seedRange(t *testing.T, tx *postgres.TxRunner, id string, start, end int64) {
	t.Helper()
	err := tx.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		return repos.Folios.Create(ctx, &entity.FolioRange{
			ID: id, DocType: entity.DocTypeBoleta, RangeStart: start, RangeEnd: end, CreatedAt: time.Now(),
		})
	})
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Folios
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_FoliosConcurrentesSinHuecos(t *testing.T) {
	_, tx := setupDB(t)
	seedRange(t, tx, "caf-1", 1, 100)
	alloc := folio.NewAllocator(zerolog.Nop())

	const n = 25
	folios := make([]int64, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return tx.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
				a, err := alloc.Allocate(ctx, repos, entity.DocTypeBoleta)
				folios[i] = a.Folio
				return err
			})
		})
	}
	require.NoError(t, g.Wait())

	sort.Slice(folios, func(a, b int) bool { return folios[a] < folios[b] })
	for i, f := range folios {
		assert.Equal(t, int64(i+1), f)
	}
}

func TestPostgres_RollbackDevuelveElFolio(t *testing.T) {
	_, tx := setupDB(t)
	seedRange(t, tx, "caf-1", 1, 10)
	alloc := folio.NewAllocator(zerolog.Nop())

	err := tx.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		if _, err := alloc.Allocate(ctx, repos, entity.DocTypeBoleta); err != nil {
			return err
		}
		return domain.ErrInvalidInput
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var got folio.Allocation
	err = tx.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		var err error
		got, err = alloc.Allocate(ctx, repos, entity.DocTypeBoleta)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Folio)
}

func TestPostgres_AltasDeRangoConcurrentesSinSuperposicion(t *testing.T) {
	_, tx := setupDB(t)
	uc := folio.NewRangeUseCase(tx, zerolog.Nop())

	const n = 8
	results := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, results[i] = uc.Register(context.Background(), dto.RegisterFolioRangeRequest{
				DocType: int(entity.DocTypeBoleta), RangeStart: int64(1 + 10*i), RangeEnd: int64(500 + 10*i),
			})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ok := 0
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrFolioRangeOverlap)
	}
	assert.Equal(t, 1, ok)
}

// ──────────────────────────────────────────────────────────────────────────────
// Caja e inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_UnaCajaAbiertaPorCajero(t *testing.T) {
	_, tx := setupDB(t)
	m := cash.NewManager(tx, nil, zerolog.Nop())

	const n = 8
	var g errgroup.Group
	results := make([]error, n)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, results[i] = m.Open(context.Background(), "cajero-1", decimal.NewFromInt(1000), false)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	ok := 0
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)
	}
	assert.Equal(t, 1, ok)
}

func TestPostgres_StockNuncaNegativo(t *testing.T) {
	pool, tx := setupDB(t)
	exec(t, pool, `INSERT INTO products (id, sku, name, net_price, current_stock) VALUES ('p1', 'P1', 'Polera', 20000, 1)`)

	err := tx.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		return repos.Products.UpdateStock(ctx, "p1", decimal.NewFromInt(-1))
	})
	require.Error(t, err)

	p, err := postgres.NewProductRepository(pool).GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "1", p.CurrentStock.String())
}

func TestPostgres_KardexSoloAgrega(t *testing.T) {
	pool, tx := setupDB(t)
	exec(t, pool, `INSERT INTO products (id, sku, name, net_price, current_stock) VALUES ('p1', 'P1', 'Polera', 20000, 0)`)
	ledger := inventory.NewLedger(zerolog.Nop())

	var mov *entity.StockMovement
	err := tx.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		var err error
		mov, err = ledger.ApplyMovement(ctx, repos, inventory.MovementInput{
			ProductID: "p1", Direction: entity.DirectionIN, Reason: entity.ReasonPurchase,
			Quantity: decimal.NewFromInt(5), CreatedBy: "bodega",
		})
		return err
	})
	require.NoError(t, err)

	_, err = pool.Exec(context.Background(), `UPDATE stock_movements SET quantity = 1 WHERE id = $1`, mov.ID)
	require.Error(t, err)
	_, err = pool.Exec(context.Background(), `DELETE FROM stock_movements WHERE id = $1`, mov.ID)
	require.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Venta completa
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_VentaYDevolucion(t *testing.T) {
	pool, tx := setupDB(t)
	log := zerolog.Nop()
	ctx := context.Background()

	err := tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Issuer.Save(ctx, &entity.IssuerProfile{
			ID: "emisor", TaxID: "76.086.428-5", LegalName: "Comercial Torn SpA",
			BusinessLine: "Venta al por menor", ActivityCode: "477102",
			Address: "Av. Providencia 1234", Commune: "Providencia", City: "Santiago",
		})
	})
	require.NoError(t, err)
	exec(t, pool, `INSERT INTO customers (id, tax_id, name) VALUES ('cli-1', '12.345.678-5', 'María Muñoz')`)
	exec(t, pool, `INSERT INTO products (id, sku, name, net_price, current_stock) VALUES ('polera', 'POL', 'Polera', 20000, 5)`)
	seedRange(t, tx, "caf-1", 1, 100)

	cashManager := cash.NewManager(tx, nil, log)
	uc := sales.NewSaleUseCase(tx, folio.NewAllocator(log), inventory.NewLedger(log), payment.NewReconciler(log),
		cashManager, dte.NewIssuer(time.UTC), sales.DefaultConfig(), log)

	_, err = cashManager.Open(ctx, "cajero-1", decimal.NewFromInt(10000), false)
	require.NoError(t, err)

	sale, err := uc.CreateSale(ctx, "cajero-1", dto.CreateSaleRequest{
		CustomerID: "cli-1",
		DocType:    int(entity.DocTypeBoleta),
		Lines:      []dto.SaleLineRequest{{ProductID: "polera", Quantity: decimal.NewFromInt(2)}},
		Tenders:    []dto.TenderRequest{{Method: string(entity.PaymentCash), Amount: decimal.NewFromInt(50000)}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sale.Folio)
	assert.Equal(t, "47600", sale.TotalAmount.String())

	ret, err := uc.CreateReturn(ctx, "cajero-1", dto.CreateReturnRequest{
		OriginalSaleID: sale.SaleID,
		Lines:          []dto.SaleLineRequest{{ProductID: "polera", Quantity: decimal.NewFromInt(1)}},
		Reason:         "talla incorrecta",
		RefundMethod:   string(entity.PaymentCash),
	})
	require.NoError(t, err)
	assert.Equal(t, "23800", ret.TotalAmount.String())

	p, err := postgres.NewProductRepository(pool).GetByID(ctx, "polera")
	require.NoError(t, err)
	assert.Equal(t, "4", p.CurrentStock.String())

	closed, err := cashManager.Close(ctx, "cajero-1", decimal.NewFromInt(36200))
	require.NoError(t, err)
	assert.Equal(t, "36200", closed.ExpectedCash.String(), "10000 + 50000 - 23800 reembolsados")
	assert.True(t, closed.Discrepancy.IsZero())
}

func TestPostgres_RequestCanceladoIgualConfirma(t *testing.T) {
	_, tx := setupDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Folios.Create(ctx, &entity.FolioRange{
			ID: "caf-cancel", DocType: entity.DocTypeBoleta, RangeStart: 1, RangeEnd: 10, CreatedAt: time.Now(),
		})
	})
	require.NoError(t, err)

	err = tx.RunInTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		n, err := repos.Folios.CountByDocType(ctx, entity.DocTypeBoleta)
		assert.Equal(t, 1, n)
		return err
	})
	require.NoError(t, err)
}
