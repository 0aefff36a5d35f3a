package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo pagos de ventas y reembolsos (monto negativo).
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO payments (id, sale_id, method, amount, reference, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.SaleID, string(p.Method), p.Amount, p.Reference, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) ListBySale(ctx context.Context, saleID string) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, sale_id, method, amount, reference, created_at FROM payments WHERE sale_id = $1 ORDER BY seq`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var out []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		var method string
		if err := rows.Scan(&p.ID, &p.SaleID, &method, &p.Amount, &p.Reference, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Method = entity.PaymentMethod(method)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PaymentRepo) SumCashSince(ctx context.Context, cashierID string, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p JOIN sales s ON s.id = p.sale_id
		WHERE p.method = $1 AND s.cashier_id = $2 AND s.created_at >= $3`,
		string(entity.PaymentCash), cashierID, since).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum cash payments: %w", err)
	}
	return total, nil
}
