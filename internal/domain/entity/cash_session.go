package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionState estado de un turno de caja.
type SessionState string

const (
	SessionOpen        SessionState = "OPEN"
	SessionClosed      SessionState = "CLOSED"
	SessionForceClosed SessionState = "FORCE_CLOSED"
)

// CashSession turno de caja de un cajero. A lo más una sesión OPEN por cajero.
type CashSession struct {
	ID           string
	CashierID    string
	OpenedAt     time.Time
	ClosedAt     *time.Time
	OpeningFloat decimal.Decimal
	ExpectedCash decimal.Decimal
	DeclaredCash decimal.Decimal
	Discrepancy  decimal.Decimal // declarado - esperado
	State        SessionState
}

// IsOpen indica si la sesión sigue abierta.
func (s *CashSession) IsOpen() bool { return s.State == SessionOpen }
