// Package inventory reglas puras del kardex: saldo siguiente y reconstrucción desde movimientos.
package inventory

import (
	"errors"
	"fmt"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ErrInvalidMovement movimiento con cantidad o dirección inválida.
var ErrInvalidMovement = errors.New("movimiento de inventario inválido")

// NextBalance aplica un movimiento sobre el saldo actual. No valida stock negativo:
// eso lo garantiza quien bloquea la fila y verifica disponibilidad antes.
func NextBalance(current decimal.Decimal, dir entity.Direction, qty decimal.Decimal) (decimal.Decimal, error) {
	if !qty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: cantidad %s", ErrInvalidMovement, qty.String())
	}
	switch dir {
	case entity.DirectionIN:
		return current.Add(qty), nil
	case entity.DirectionOUT:
		return current.Sub(qty), nil
	}
	return decimal.Zero, fmt.Errorf("%w: dirección %q", ErrInvalidMovement, dir)
}

// ReplayResult resultado de reconstruir el saldo desde el kardex.
type ReplayResult struct {
	Opening  decimal.Decimal // saldo previo al primer movimiento
	Balance  decimal.Decimal // saldo tras el último movimiento
	Count    int
	BrokenAt string // ID del primer movimiento cuyo BalanceAfter no cuadra; vacío si todo cuadra
}

// Replay recorre los movimientos en orden de inserción. El saldo de apertura se deduce del primero.
func Replay(movements []*entity.StockMovement) ReplayResult {
	if len(movements) == 0 {
		return ReplayResult{}
	}
	first := movements[0]
	res := ReplayResult{Opening: first.BalanceAfter.Sub(first.Signed())}
	balance := res.Opening
	for _, m := range movements {
		balance = balance.Add(m.Signed())
		if res.BrokenAt == "" && !balance.Equal(m.BalanceAfter) {
			res.BrokenAt = m.ID
		}
		res.Count++
	}
	res.Balance = balance
	return res
}
