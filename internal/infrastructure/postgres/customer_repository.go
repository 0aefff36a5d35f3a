package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	query := `
		SELECT id, tax_id, name, business_line, address, commune, city, email, active, current_balance, created_at, updated_at
		FROM customers WHERE id = $1`
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.TaxID, &c.Name, &c.BusinessLine, &c.Address, &c.Commune, &c.City, &c.Email,
		&c.Active, &c.CurrentBalance, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// AdjustBalance suma delta en una sola sentencia UPDATE.
func (r *CustomerRepo) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx,
		`UPDATE customers SET current_balance = current_balance + $2, updated_at = NOW() WHERE id = $1 RETURNING current_balance`,
		id, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.NewNotFound("cliente", id)
		}
		return decimal.Zero, fmt.Errorf("adjust customer balance: %w", err)
	}
	return balance, nil
}
