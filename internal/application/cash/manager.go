// Package cash administra los turnos de caja: apertura, cierre con arqueo y verificación de turno abierto.
package cash

import (
	"context"
	"time"

	"github.com/AstralMoonlight/torn/internal/application/dto"
	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CashierLocker candado distribuido por cajero (opcional, p. ej. Redis) que se toma antes de la transacción.
type CashierLocker interface {
	Lock(ctx context.Context, cashierID string) (unlock func(context.Context) error, err error)
}

// Manager garantiza a lo más una sesión OPEN por cajero.
// Toda operación toma el candado de cajero de la base (y el distribuido, si hay) antes de leer la sesión.
type Manager struct {
	tx     repository.TxRunner
	locker CashierLocker
	log    zerolog.Logger
	now    func() time.Time
}

// NewManager construye el manager. locker puede ser nil.
func NewManager(tx repository.TxRunner, locker CashierLocker, log zerolog.Logger) *Manager {
	return &Manager{tx: tx, locker: locker, log: log, now: time.Now}
}

// Open abre un turno. Si ya hay uno abierto devuelve SessionAlreadyOpenError, salvo force:
// en ese caso el anterior queda FORCE_CLOSED con declarado 0, esperado 0 y diferencia 0 (sin arqueo).
func (m *Manager) Open(ctx context.Context, cashierID string, openingFloat decimal.Decimal, force bool) (*dto.OpenCashResponse, error) {
	if cashierID == "" {
		return nil, domain.ErrUnauthorized
	}
	if openingFloat.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	unlock, err := m.lock(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := m.now()
	session := &entity.CashSession{
		ID:           uuid.New().String(),
		CashierID:    cashierID,
		OpenedAt:     now,
		OpeningFloat: openingFloat,
		State:        entity.SessionOpen,
	}
	var forcedID string
	err = m.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.CashSessions.LockCashier(ctx, cashierID); err != nil {
			return err
		}
		current, err := repos.CashSessions.GetOpenByCashier(ctx, cashierID)
		if err != nil {
			return err
		}
		if current != nil {
			if !force {
				return &domain.SessionAlreadyOpenError{SessionID: current.ID, OpenedAt: current.OpenedAt}
			}
			closedAt := now
			current.State = entity.SessionForceClosed
			current.ClosedAt = &closedAt
			current.ExpectedCash = decimal.Zero
			current.DeclaredCash = decimal.Zero
			current.Discrepancy = decimal.Zero
			if err := repos.CashSessions.Update(ctx, current); err != nil {
				return err
			}
			forcedID = current.ID
		}
		return repos.CashSessions.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	if forcedID != "" {
		m.log.Warn().Str("cashier_id", cashierID).Str("session_id", forcedID).Msg("caja anterior cerrada de oficio")
	}
	m.log.Info().Str("cashier_id", cashierID).Str("session_id", session.ID).Str("opening_float", openingFloat.String()).Msg("caja abierta")
	return &dto.OpenCashResponse{
		SessionID:     session.ID,
		State:         string(session.State),
		OpenedAt:      session.OpenedAt,
		ForceClosedID: forcedID,
	}, nil
}

// Close cierra el turno abierto con el arqueo: esperado = fondo inicial + efectivo de los documentos
// del cajero desde la apertura; diferencia = declarado - esperado.
func (m *Manager) Close(ctx context.Context, cashierID string, declared decimal.Decimal) (*dto.CloseCashResponse, error) {
	if cashierID == "" {
		return nil, domain.ErrUnauthorized
	}
	if declared.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	unlock, err := m.lock(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var session *entity.CashSession
	err = m.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.CashSessions.LockCashier(ctx, cashierID); err != nil {
			return err
		}
		var err error
		session, err = repos.CashSessions.GetOpenByCashier(ctx, cashierID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.NewPrecondition(domain.ErrNoOpenSession, "cajero", cashierID)
		}
		cashSales, err := repos.Payments.SumCashSince(ctx, cashierID, session.OpenedAt)
		if err != nil {
			return err
		}
		closedAt := m.now()
		session.ExpectedCash = session.OpeningFloat.Add(cashSales)
		session.DeclaredCash = declared
		session.Discrepancy = declared.Sub(session.ExpectedCash)
		session.State = entity.SessionClosed
		session.ClosedAt = &closedAt
		return repos.CashSessions.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	ev := m.log.Info()
	if !session.Discrepancy.IsZero() {
		ev = m.log.Warn()
	}
	ev.Str("cashier_id", cashierID).
		Str("session_id", session.ID).
		Str("expected", session.ExpectedCash.String()).
		Str("declared", declared.String()).
		Str("discrepancy", session.Discrepancy.String()).
		Msg("caja cerrada")
	return &dto.CloseCashResponse{
		SessionID:    session.ID,
		ExpectedCash: session.ExpectedCash,
		DeclaredCash: session.DeclaredCash,
		Discrepancy:  session.Discrepancy,
		ClosedAt:     *session.ClosedAt,
	}, nil
}

// Status devuelve el turno abierto con el efectivo esperado a la fecha.
func (m *Manager) Status(ctx context.Context, cashierID string) (*dto.CashStatusResponse, error) {
	if cashierID == "" {
		return nil, domain.ErrUnauthorized
	}
	var resp *dto.CashStatusResponse
	err := m.tx.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		session, err := repos.CashSessions.GetOpenByCashier(ctx, cashierID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.NewPrecondition(domain.ErrNoOpenSession, "cajero", cashierID)
		}
		cashSales, err := repos.Payments.SumCashSince(ctx, cashierID, session.OpenedAt)
		if err != nil {
			return err
		}
		resp = &dto.CashStatusResponse{
			SessionID:    session.ID,
			State:        string(session.State),
			OpenedAt:     session.OpenedAt,
			OpeningFloat: session.OpeningFloat,
			CashSales:    cashSales,
			ExpectedCash: session.OpeningFloat.Add(cashSales),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RequireOpen verifica, dentro de la tx del llamador, que el cajero tenga turno abierto.
// Toma el candado del cajero para que un cierre concurrente no deje fuera del arqueo a esta venta.
func (m *Manager) RequireOpen(ctx context.Context, repos repository.Repositories, cashierID string) (*entity.CashSession, error) {
	if cashierID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := repos.CashSessions.LockCashier(ctx, cashierID); err != nil {
		return nil, err
	}
	session, err := repos.CashSessions.GetOpenByCashier(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.NewPrecondition(domain.ErrNoOpenSession, "cajero", cashierID)
	}
	return session, nil
}

func (m *Manager) lock(ctx context.Context, cashierID string) (func(), error) {
	if m.locker == nil {
		return func() {}, nil
	}
	release, err := m.locker.Lock(ctx, cashierID)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			m.log.Warn().Err(err).Str("cashier_id", cashierID).Msg("no se pudo liberar el candado de caja")
		}
	}, nil
}
