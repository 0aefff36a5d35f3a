package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.CashSessionRepository = (*CashSessionRepo)(nil)

// CashSessionRepo turnos de caja. Un índice único parcial garantiza una sola sesión OPEN por cajero.
type CashSessionRepo struct {
	q Querier
}

// NewCashSessionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashSessionRepository(q Querier) *CashSessionRepo {
	return &CashSessionRepo{q: q}
}

// LockCashier advisory lock de transacción sobre el cajero.
func (r *CashSessionRepo) LockCashier(ctx context.Context, cashierID string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('caja:' || $1))`, cashierID); err != nil {
		return fmt.Errorf("lock cashier: %w", err)
	}
	return nil
}

func (r *CashSessionRepo) GetOpenByCashier(ctx context.Context, cashierID string) (*entity.CashSession, error) {
	query := `
		SELECT id, cashier_id, opened_at, closed_at, opening_float, expected_cash, declared_cash, discrepancy, state
		FROM cash_sessions WHERE cashier_id = $1 AND state = $2`
	var cs entity.CashSession
	var state string
	err := r.q.QueryRow(ctx, query, cashierID, string(entity.SessionOpen)).Scan(
		&cs.ID, &cs.CashierID, &cs.OpenedAt, &cs.ClosedAt, &cs.OpeningFloat,
		&cs.ExpectedCash, &cs.DeclaredCash, &cs.Discrepancy, &state,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open cash session: %w", err)
	}
	cs.State = entity.SessionState(state)
	return &cs, nil
}

func (r *CashSessionRepo) Create(ctx context.Context, cs *entity.CashSession) error {
	query := `
		INSERT INTO cash_sessions (id, cashier_id, opened_at, closed_at, opening_float, expected_cash, declared_cash, discrepancy, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		cs.ID, cs.CashierID, cs.OpenedAt, cs.ClosedAt, cs.OpeningFloat,
		cs.ExpectedCash, cs.DeclaredCash, cs.Discrepancy, string(cs.State),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %w", domain.ErrConflict, domain.ErrSessionAlreadyOpen)
		}
		return fmt.Errorf("insert cash session: %w", err)
	}
	return nil
}

func (r *CashSessionRepo) Update(ctx context.Context, cs *entity.CashSession) error {
	query := `
		UPDATE cash_sessions
		SET closed_at = $2, expected_cash = $3, declared_cash = $4, discrepancy = $5, state = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		cs.ID, cs.ClosedAt, cs.ExpectedCash, cs.DeclaredCash, cs.Discrepancy, string(cs.State))
	if err != nil {
		return fmt.Errorf("update cash session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("sesión de caja", cs.ID)
	}
	return nil
}
