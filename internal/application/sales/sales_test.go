package sales_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

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
	"github.com/AstralMoonlight/torn/internal/infrastructure/dte"
	"github.com/AstralMoonlight/torn/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	cashier  = "cajero-1"
	customer = "cli-1"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// failingIssuer simula una caída del emisor de documentos.
type failingIssuer struct{}

func (failingIssuer) Render(context.Context, sales.DocumentInput) (sales.Document, error) {
	return sales.Document{}, errors.New("servicio de emisión no disponible")
}

type fixture struct {
	store *memory.Store
	cash  *cash.Manager
	uc    *sales.SaleUseCase
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	issuer sales.DocumentIssuer
	cfg    sales.Config
}

func withIssuer(i sales.DocumentIssuer) fixtureOption {
	return func(c *fixtureConfig) { c.issuer = i }
}

func withConfig(cfg sales.Config) fixtureOption {
	return func(c *fixtureConfig) { c.cfg = cfg }
}

// newFixture: emisor configurado, cliente activo, producto "polera" a 20000 neto con stock 10,
// "servicio" sin control de stock, rango de boletas 1..100 y caja abierta para el cajero.
func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	fc := fixtureConfig{issuer: dte.NewIssuer(time.UTC), cfg: sales.DefaultConfig()}
	for _, o := range opts {
		o(&fc)
	}
	log := zerolog.Nop()
	store := memory.NewStore()
	now := time.Now()
	store.SetIssuer(entity.IssuerProfile{
		ID: "emisor", TaxID: "76.086.428-5", LegalName: "Comercial Torn SpA",
		BusinessLine: "Venta al por menor", ActivityCode: "477102",
		Address: "Av. Providencia 1234", Commune: "Providencia", City: "Santiago",
	})
	store.PutCustomer(entity.Customer{ID: customer, TaxID: "12.345.678-5", Name: "María Muñoz", Active: true,
		CreatedAt: now, UpdatedAt: now})
	store.PutProduct(entity.Product{ID: "polera", SKU: "POL", Name: "Polera", NetPrice: dec("20000"),
		Active: true, TracksStock: true, CurrentStock: dec("10"), CreatedAt: now, UpdatedAt: now})
	store.PutProduct(entity.Product{ID: "servicio", SKU: "SRV", Name: "Bordado", NetPrice: dec("2500"),
		Active: true, CreatedAt: now, UpdatedAt: now})
	store.PutFolioRange(entity.FolioRange{ID: "caf-39", DocType: entity.DocTypeBoleta, RangeStart: 1, RangeEnd: 100,
		LastUsed: 0, CreatedAt: now})

	cashManager := cash.NewManager(store, nil, log)
	ledger := inventory.NewLedger(log)
	uc := sales.NewSaleUseCase(store, folio.NewAllocator(log), ledger, payment.NewReconciler(log),
		cashManager, fc.issuer, fc.cfg, log)

	_, err := cashManager.Open(context.Background(), cashier, dec("0"), false)
	require.NoError(t, err)
	return &fixture{store: store, cash: cashManager, uc: uc}
}

func (f *fixture) stock(id string) string {
	p, _ := f.store.Product(id)
	return p.CurrentStock.String()
}

func (f *fixture) balance() string {
	c, _ := f.store.Customer(customer)
	return c.CurrentBalance.String()
}

func saleOf(docType int, lines []dto.SaleLineRequest, tenders ...dto.TenderRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{CustomerID: customer, DocType: docType, Lines: lines, Tenders: tenders}
}

func line(productID, qty string) dto.SaleLineRequest {
	return dto.SaleLineRequest{ProductID: productID, Quantity: dec(qty)}
}

func pay(method entity.PaymentMethod, amount string) dto.TenderRequest {
	return dto.TenderRequest{Method: string(method), Amount: dec(amount)}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateSale: caso feliz
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_BoletaConVuelto(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.CreateSale(context.Background(), cashier,
		saleOf(39, []dto.SaleLineRequest{line("polera", "2")}, pay(entity.PaymentCash, "50000")))
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.Folio)
	assert.False(t, resp.Provisional)
	assert.Equal(t, "40000", resp.NetAmount.String())
	assert.Equal(t, "7600", resp.TaxAmount.String())
	assert.Equal(t, "47600", resp.TotalAmount.String())
	assert.Equal(t, "2400", resp.Overpaid.String())
	assert.NotEmpty(t, resp.Digest)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "40000", resp.Lines[0].Subtotal.String())

	assert.Equal(t, "8", f.stock("polera"))
	movs := f.store.Movements("polera")
	require.Len(t, movs, 1)
	assert.Equal(t, entity.ReasonSale, movs[0].Reason)
	assert.Equal(t, resp.SaleID, movs[0].SaleID)

	// solo el efectivo entregado; el vuelto no se registra como pago
	payments := f.store.Payments()
	require.Len(t, payments, 1)
	assert.Equal(t, "50000", payments[0].Amount.String())

	status, err := f.cash.Status(context.Background(), cashier)
	require.NoError(t, err)
	assert.Equal(t, "50000", status.ExpectedCash.String())

	doc, err := f.uc.GetDocument(context.Background(), resp.SaleID)
	require.NoError(t, err)
	parsed, err := dte.Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "47600", parsed.FindElement("//Totales/MntTotal").Text())
	digest, err := dte.Digest(doc)
	require.NoError(t, err)
	assert.Equal(t, resp.Digest, digest)

	got, err := f.uc.GetSale(context.Background(), resp.SaleID)
	require.NoError(t, err)
	assert.Equal(t, resp.TotalAmount.String(), got.TotalAmount.String())
	assert.Len(t, got.Payments, 1)
}

func TestCreateSale_ArqueoTrasPagoConExceso(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 2500 neto -> 2975 total, pagado con 5000 en efectivo
	resp, err := f.uc.CreateSale(ctx, cashier,
		saleOf(39, []dto.SaleLineRequest{line("servicio", "1")}, pay(entity.PaymentCash, "5000")))
	require.NoError(t, err)
	assert.Equal(t, "2975", resp.TotalAmount.String())
	assert.Equal(t, "2025", resp.Overpaid.String())

	closed, err := f.cash.Close(ctx, cashier, dec("5000"))
	require.NoError(t, err)
	assert.Equal(t, "5000", closed.ExpectedCash.String())
	assert.True(t, closed.Discrepancy.IsZero(), "declarado - (fondo + efectivo entregado)")
}

func TestCreateSale_FoliosConsecutivos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		resp, err := f.uc.CreateSale(ctx, cashier,
			saleOf(39, []dto.SaleLineRequest{line("servicio", "1")}, pay(entity.PaymentDebit, "2975")))
		require.NoError(t, err)
		assert.Equal(t, want, resp.Folio)
	}
}

func TestCreateSale_FacturaExentaSinIVA(t *testing.T) {
	f := newFixture(t)
	f.store.PutFolioRange(entity.FolioRange{ID: "caf-34", DocType: entity.DocTypeFacturaExenta,
		RangeStart: 1, RangeEnd: 10, CreatedAt: time.Now()})

	resp, err := f.uc.CreateSale(context.Background(), cashier,
		saleOf(34, []dto.SaleLineRequest{line("polera", "1")}, pay(entity.PaymentTransfer, "20000")))
	require.NoError(t, err)
	assert.True(t, resp.TaxAmount.IsZero())
	assert.Equal(t, "20000", resp.TotalAmount.String())
}

func TestCreateSale_CreditoInternoAumentaDeuda(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.CreateSale(context.Background(), cashier,
		saleOf(39, []dto.SaleLineRequest{line("polera", "1")},
			pay(entity.PaymentStoreCredit, "20000"), pay(entity.PaymentCash, "3800")))
	require.NoError(t, err)
	assert.Equal(t, "20000", f.balance())
}

func TestCreateSale_FolioProvisionalConfigurable(t *testing.T) {
	cfg := sales.DefaultConfig()
	cfg.SaleProvisionalFallback = true
	f := newFixture(t, withConfig(cfg))

	resp, err := f.uc.CreateSale(context.Background(), cashier, dto.CreateSaleRequest{
		CustomerID: customer, DocType: 33,
		Lines:   []dto.SaleLineRequest{line("servicio", "2")},
		Tenders: []dto.TenderRequest{pay(entity.PaymentCredit, "5950")},
	})
	require.NoError(t, err)
	assert.True(t, resp.Provisional)
	assert.Equal(t, int64(1), resp.Folio)
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateSale: rechazos sin efectos
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_FallaDeEmisionRevierteTodo(t *testing.T) {
	f := newFixture(t, withIssuer(failingIssuer{}))

	_, err := f.uc.CreateSale(context.Background(), cashier,
		saleOf(39, []dto.SaleLineRequest{line("polera", "2")},
			pay(entity.PaymentStoreCredit, "40000"), pay(entity.PaymentCash, "7600")))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIssuanceFailed)

	assert.Equal(t, "10", f.stock("polera"))
	assert.Empty(t, f.store.Movements("polera"))
	assert.Empty(t, f.store.Sales())
	assert.Empty(t, f.store.Payments())
	assert.Equal(t, "0", f.balance())
	ranges := f.store.FolioRanges()
	assert.Equal(t, int64(0), ranges[0].LastUsed, "el folio vuelve al rango")
}

func TestCreateSale_RechazosTempranos(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(f *fixture)
		cashier string
		req     dto.CreateSaleRequest
		want    error
	}{
		{
			name:    "sin caja abierta",
			cashier: "cajero-sin-turno",
			req:     saleOf(39, []dto.SaleLineRequest{line("polera", "1")}, pay(entity.PaymentCash, "23800")),
			want:    domain.ErrNoOpenSession,
		},
		{
			name:    "sin cajero",
			cashier: "",
			req:     saleOf(39, []dto.SaleLineRequest{line("polera", "1")}, pay(entity.PaymentCash, "23800")),
			want:    domain.ErrUnauthorized,
		},
		{
			name:    "tipo de documento no vendible",
			cashier: cashier,
			req:     saleOf(61, []dto.SaleLineRequest{line("polera", "1")}, pay(entity.PaymentCash, "23800")),
			want:    domain.ErrInvalidInput,
		},
		{
			name:    "sin líneas",
			cashier: cashier,
			req:     saleOf(39, nil, pay(entity.PaymentCash, "23800")),
			want:    domain.ErrInvalidInput,
		},
		{
			name:    "producto inexistente",
			cashier: cashier,
			req:     saleOf(39, []dto.SaleLineRequest{line("nada", "1")}, pay(entity.PaymentCash, "23800")),
			want:    domain.ErrNotFound,
		},
		{
			name: "producto inactivo",
			prepare: func(f *fixture) {
				p, _ := f.store.Product("polera")
				p.Active = false
				f.store.PutProduct(p)
			},
			cashier: cashier,
			req:     saleOf(39, []dto.SaleLineRequest{line("polera", "1")}, pay(entity.PaymentCash, "23800")),
			want:    domain.ErrInactive,
		},
		{
			name: "cliente inactivo",
			prepare: func(f *fixture) {
				c, _ := f.store.Customer(customer)
				c.Active = false
				f.store.PutCustomer(c)
			},
			cashier: cashier,
			req:     saleOf(39, []dto.SaleLineRequest{line("polera", "1")}, pay(entity.PaymentCash, "23800")),
			want:    domain.ErrInactive,
		},
		{
			name:    "stock insuficiente",
			cashier: cashier,
			req:     saleOf(39, []dto.SaleLineRequest{line("polera", "11")}, pay(entity.PaymentCash, "300000")),
			want:    domain.ErrInsufficientStock,
		},
		{
			name:    "pago insuficiente",
			cashier: cashier,
			req:     saleOf(39, []dto.SaleLineRequest{line("polera", "1")}, pay(entity.PaymentCash, "23799")),
			want:    domain.ErrPaymentShortfall,
		},
		{
			name:    "sin rango de folios",
			cashier: cashier,
			req:     saleOf(33, []dto.SaleLineRequest{line("polera", "1")}, pay(entity.PaymentCash, "23800")),
			want:    domain.ErrNoFolioRange,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			if tc.prepare != nil {
				tc.prepare(f)
			}
			_, err := f.uc.CreateSale(context.Background(), tc.cashier, tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, "10", f.stock("polera"))
			assert.Empty(t, f.store.Sales())
			assert.Empty(t, f.store.Payments())
		})
	}
}

func TestCreateSale_LineasRepetidasSeSumanContraElStock(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.store.PutProduct(entity.Product{ID: "polera-xl", ParentID: "polera", SKU: "POL-XL", Name: "Polera XL",
		NetPrice: dec("22000"), Active: true, CreatedAt: now, UpdatedAt: now})

	_, err := f.uc.CreateSale(context.Background(), cashier, saleOf(39,
		[]dto.SaleLineRequest{line("polera", "6"), line("polera-xl", "5")}, pay(entity.PaymentCash, "500000")))
	var stock *domain.InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, "polera", stock.ProductID)
	assert.Equal(t, "11", stock.Requested.String())
	assert.Equal(t, "10", f.stock("polera"))
}

func TestCreateSale_SinEmisorConfigurado(t *testing.T) {
	log := zerolog.Nop()
	store := memory.NewStore()
	store.PutCustomer(entity.Customer{ID: customer, Active: true})
	store.PutProduct(entity.Product{ID: "servicio", NetPrice: dec("1000"), Active: true})
	cashManager := cash.NewManager(store, nil, log)
	uc := sales.NewSaleUseCase(store, folio.NewAllocator(log), inventory.NewLedger(log), payment.NewReconciler(log),
		cashManager, dte.NewIssuer(time.UTC), sales.DefaultConfig(), log)
	_, err := cashManager.Open(context.Background(), cashier, dec("0"), false)
	require.NoError(t, err)

	_, err = uc.CreateSale(context.Background(), cashier,
		saleOf(39, []dto.SaleLineRequest{line("servicio", "1")}, pay(entity.PaymentCash, "1190")))
	assert.ErrorIs(t, err, domain.ErrIssuerNotConfigured)
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	assert.Empty(t, store.Sales())
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_ConcurrenteUltimaUnidad(t *testing.T) {
	f := newFixture(t)
	p, _ := f.store.Product("polera")
	p.CurrentStock = dec("1")
	f.store.PutProduct(p)

	var (
		mu      sync.Mutex
		won     int
		noStock int
	)
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := f.uc.CreateSale(context.Background(), cashier,
				saleOf(39, []dto.SaleLineRequest{line("polera", "1")}, pay(entity.PaymentCash, "23800")))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, domain.ErrInsufficientStock):
				noStock++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, won)
	assert.Equal(t, 7, noStock)
	assert.Equal(t, "0", f.stock("polera"))
	assert.Equal(t, int64(1), f.store.FolioRanges()[0].LastUsed, "los rechazos no consumen folios")
}

func TestCreateSale_ConcurrenteFoliosSinHuecos(t *testing.T) {
	f := newFixture(t)
	const n = 20

	folios := make([]int64, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			resp, err := f.uc.CreateSale(context.Background(), cashier,
				saleOf(39, []dto.SaleLineRequest{line("servicio", "1")}, pay(entity.PaymentCash, "2975")))
			if err != nil {
				return err
			}
			folios[i] = resp.Folio
			return nil
		})
	}
	require.NoError(t, g.Wait())
	sort.Slice(folios, func(i, j int) bool { return folios[i] < folios[j] })
	for i, fo := range folios {
		assert.Equal(t, int64(i+1), fo)
	}
}
