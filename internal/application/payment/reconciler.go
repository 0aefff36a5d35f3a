// Package payment concilia los medios de pago contra el total de un documento.
package payment

import (
	"context"
	"fmt"

	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Tender un medio de pago entregado por el cliente.
type Tender struct {
	Method    entity.PaymentMethod
	Amount    decimal.Decimal
	Reference string
}

// Reconciliation resultado de conciliar: lo pagado cubre lo adeudado.
// Overpaid es el exceso (vuelto); se informa, no se corrige.
type Reconciliation struct {
	Due         decimal.Decimal
	Tendered    decimal.Decimal
	Overpaid    decimal.Decimal
	Cash        decimal.Decimal
	StoreCredit decimal.Decimal
}

// Effect sentido del efecto del crédito interno sobre la deuda del cliente.
type Effect int

const (
	EffectSale     Effect = iota // la deuda aumenta
	EffectReversal               // la deuda disminuye
)

// Reconciler concilia pagos y aplica el efecto del crédito interno.
type Reconciler struct {
	log zerolog.Logger
}

// NewReconciler construye el conciliador.
func NewReconciler(log zerolog.Logger) *Reconciler {
	return &Reconciler{log: log}
}

// Reconcile verifica que la suma de los pagos cubra totalDue. No toca la base de datos.
// El crédito interno no puede exceder lo adeudado: no se da vuelto contra la cuenta del cliente.
func (r *Reconciler) Reconcile(totalDue decimal.Decimal, tenders []Tender) (Reconciliation, error) {
	rec := Reconciliation{Due: totalDue}
	for _, t := range tenders {
		if !t.Method.IsValid() {
			return Reconciliation{}, fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, t.Method)
		}
		if !t.Amount.IsPositive() {
			return Reconciliation{}, fmt.Errorf("%w: monto de pago debe ser positivo", domain.ErrInvalidInput)
		}
		rec.Tendered = rec.Tendered.Add(t.Amount)
		switch {
		case t.Method.IsCash():
			rec.Cash = rec.Cash.Add(t.Amount)
		case t.Method.IsStoreCredit():
			rec.StoreCredit = rec.StoreCredit.Add(t.Amount)
		}
	}
	if rec.Tendered.LessThan(totalDue) {
		return Reconciliation{}, &domain.ShortfallError{
			Due:      totalDue,
			Tendered: rec.Tendered,
			Missing:  totalDue.Sub(rec.Tendered),
		}
	}
	if rec.StoreCredit.GreaterThan(totalDue) {
		return Reconciliation{}, fmt.Errorf("%w: crédito interno (%s) mayor que el total (%s)",
			domain.ErrInvalidInput, rec.StoreCredit.String(), totalDue.String())
	}
	rec.Overpaid = rec.Tendered.Sub(totalDue)
	if rec.Overpaid.IsPositive() {
		r.log.Info().Str("due", totalDue.String()).Str("overpaid", rec.Overpaid.String()).Msg("pago con exceso")
	}
	return rec, nil
}

// ApplyEffects ajusta la deuda del cliente por los pagos con crédito interno, dentro de la tx del llamador.
// Venta: +monto. Reversa: -monto.
func (r *Reconciler) ApplyEffects(ctx context.Context, repos repository.Repositories, customerID string, tenders []Tender, effect Effect) error {
	total := decimal.Zero
	for _, t := range tenders {
		if t.Method.IsStoreCredit() {
			total = total.Add(t.Amount)
		}
	}
	if total.IsZero() {
		return nil
	}
	if customerID == "" {
		return fmt.Errorf("%w: crédito interno requiere cliente", domain.ErrInvalidInput)
	}
	delta := total
	if effect == EffectReversal {
		delta = total.Neg()
	}
	balance, err := repos.Customers.AdjustBalance(ctx, customerID, delta)
	if err != nil {
		return err
	}
	r.log.Info().Str("customer_id", customerID).Str("delta", delta.String()).Str("balance", balance.String()).Msg("deuda de cliente actualizada")
	return nil
}
