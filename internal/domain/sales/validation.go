package sales

import (
	"errors"
	"fmt"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ErrInconsistentDocument agrupa errores de coherencia de un documento antes de emitirlo.
var ErrInconsistentDocument = errors.New("documento inconsistente")

// ValidateDocument comprueba que cabecera y líneas sean coherentes:
// subtotales = cantidad * precio, neto = suma de subtotales y total = neto + impuesto.
func ValidateDocument(sale *entity.Sale, lines []*entity.SaleLine) error {
	if sale == nil {
		return fmt.Errorf("%w: documento nulo", ErrInconsistentDocument)
	}
	var errs []error
	if !sale.DocType.IsValid() {
		errs = append(errs, fmt.Errorf("tipo de documento %d no soportado", sale.DocType))
	}
	if len(lines) == 0 {
		errs = append(errs, errors.New("el documento debe tener al menos una línea"))
	}
	sum := decimal.Zero
	for _, l := range lines {
		if !l.Quantity.IsPositive() {
			errs = append(errs, fmt.Errorf("línea %s: cantidad no positiva", l.ProductID))
		}
		if !l.Subtotal.Equal(LineSubtotal(l.Quantity, l.UnitPrice)) {
			errs = append(errs, fmt.Errorf("línea %s: subtotal %s no coincide con cantidad * precio", l.ProductID, l.Subtotal.String()))
		}
		sum = sum.Add(l.Subtotal)
	}
	if len(lines) > 0 && !sale.NetAmount.Equal(sum) {
		errs = append(errs, fmt.Errorf("neto (%s) no coincide con la suma de líneas (%s)", sale.NetAmount.String(), sum.String()))
	}
	if !sale.TotalAmount.Equal(sale.NetAmount.Add(sale.TaxAmount)) {
		errs = append(errs, fmt.Errorf("total (%s) no coincide con neto + impuesto", sale.TotalAmount.String()))
	}
	if sale.DocType == entity.DocTypeNotaCredito && sale.RelatedSaleID == "" {
		errs = append(errs, errors.New("nota de crédito sin documento de referencia"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInconsistentDocument}, errs...)...)
	}
	return nil
}
