package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenCashRequest apertura de caja. Force cierra de oficio una sesión previa abierta.
type OpenCashRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float" validate:"gte=0"`
	Force        bool            `json:"force"`
}

// OpenCashResponse sesión abierta.
type OpenCashResponse struct {
	SessionID     string    `json:"session_id"`
	State         string    `json:"state"`
	OpenedAt      time.Time `json:"opened_at"`
	ForceClosedID string    `json:"force_closed_session_id,omitempty"`
}

// CloseCashRequest arqueo de cierre.
type CloseCashRequest struct {
	DeclaredCash decimal.Decimal `json:"declared_cash" validate:"gte=0"`
}

// CloseCashResponse resultado del arqueo: Discrepancy = declarado - esperado.
type CloseCashResponse struct {
	SessionID    string          `json:"session_id"`
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	DeclaredCash decimal.Decimal `json:"declared_cash"`
	Discrepancy  decimal.Decimal `json:"discrepancy"`
	ClosedAt     time.Time       `json:"closed_at"`
}

// CashStatusResponse estado del turno abierto con el efectivo esperado a la fecha.
type CashStatusResponse struct {
	SessionID    string          `json:"session_id"`
	State        string          `json:"state"`
	OpenedAt     time.Time       `json:"opened_at"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
	CashSales    decimal.Decimal `json:"cash_sales"`
	ExpectedCash decimal.Decimal `json:"expected_cash"`
}
