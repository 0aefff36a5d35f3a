package sales_test

import (
	"testing"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var iva = decimal.RequireFromString("0.19")

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Escenario base: 2 x 20.000 neto con IVA 19% → 40.000 / 7.600 / 47.600.
func TestComputeTotals_EscenarioBoleta(t *testing.T) {
	sub := sales.LineSubtotal(d("2"), d("20000"))
	got := sales.ComputeTotals([]decimal.Decimal{sub}, iva, 0)

	assert.True(t, got.Net.Equal(d("40000")), "neto: %s", got.Net)
	assert.True(t, got.Tax.Equal(d("7600")), "iva: %s", got.Tax)
	assert.True(t, got.Total.Equal(d("47600")), "total: %s", got.Total)
}

// El impuesto se redondea una sola vez sobre el neto sumado, no línea a línea.
func TestComputeTotals_RedondeoUnicoSobreNeto(t *testing.T) {
	// 5 líneas de 2,5: por línea 0,475 → 0 (total 0); sobre el neto 12,5 * 0,19 = 2,375 → 2.
	subs := []decimal.Decimal{d("2.5"), d("2.5"), d("2.5"), d("2.5"), d("2.5")}
	got := sales.ComputeTotals(subs, iva, 0)

	assert.True(t, got.Net.Equal(d("12.5")))
	assert.True(t, got.Tax.Equal(d("2")), "iva: %s", got.Tax)
	assert.True(t, got.Total.Equal(d("14.5")))
}

func TestComputeTotals_Identidad(t *testing.T) {
	cases := [][]decimal.Decimal{
		{d("1990"), d("4990"), d("350")},
		{d("0.333"), d("10")},
		{},
	}
	for _, subs := range cases {
		got := sales.ComputeTotals(subs, iva, 0)
		assert.True(t, got.Total.Equal(got.Net.Add(got.Tax)))
		assert.True(t, got.Tax.Equal(got.Tax.Round(0)))
	}
}

func TestComputeTotals_EscalaDosDecimales(t *testing.T) {
	got := sales.ComputeTotals([]decimal.Decimal{d("10.10")}, iva, 2)
	assert.True(t, got.Tax.Equal(d("1.92")), "iva: %s", got.Tax)
}

func TestDocTypeExenta_TasaCero(t *testing.T) {
	rate := entity.DocTypeFacturaExenta.TaxRate(iva)
	got := sales.ComputeTotals([]decimal.Decimal{d("40000")}, rate, 0)
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.Equal(d("40000")))
	assert.True(t, entity.DocTypeBoleta.TaxRate(iva).Equal(iva))
}

func TestValidateDocument(t *testing.T) {
	line := &entity.SaleLine{ProductID: "p1", Quantity: d("2"), UnitPrice: d("20000"), Subtotal: d("40000")}
	sale := &entity.Sale{
		DocType:     entity.DocTypeBoleta,
		NetAmount:   d("40000"),
		TaxAmount:   d("7600"),
		TotalAmount: d("47600"),
	}
	require.NoError(t, sales.ValidateDocument(sale, []*entity.SaleLine{line}))

	bad := *sale
	bad.TotalAmount = d("47601")
	err := sales.ValidateDocument(&bad, []*entity.SaleLine{line})
	require.Error(t, err)
	assert.ErrorIs(t, err, sales.ErrInconsistentDocument)

	nc := *sale
	nc.DocType = entity.DocTypeNotaCredito
	assert.ErrorIs(t, sales.ValidateDocument(&nc, []*entity.SaleLine{line}), sales.ErrInconsistentDocument,
		"una nota de crédito sin referencia no es válida")

	assert.Error(t, sales.ValidateDocument(sale, nil), "sin líneas")
}
