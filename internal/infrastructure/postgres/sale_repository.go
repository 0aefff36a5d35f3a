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

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas, notas de crédito y sus líneas.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, folio, provisional, doc_type, net_amount, tax_rate, tax_amount, total_amount,
	customer_id, cashier_id, COALESCE(related_sale_id, ''), reason, document_body, document_digest, created_at`

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, folio, provisional, doc_type, net_amount, tax_rate, tax_amount, total_amount,
			customer_id, cashier_id, related_sale_id, reason, document_body, document_digest, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.Folio, s.Provisional, int(s.DocType), s.NetAmount, s.TaxRate, s.TaxAmount, s.TotalAmount,
		s.CustomerID, s.CashierID, nullable(s.RelatedSaleID), s.Reason, s.DocumentBody, s.DocumentDigest, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: folio %d del tipo %d ya emitido", domain.ErrConflict, s.Folio, int(s.DocType))
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) CreateLine(ctx context.Context, l *entity.SaleLine) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO sale_lines (id, sale_id, product_id, quantity, unit_price, subtotal) VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.SaleID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal)
	if err != nil {
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

func (r *SaleRepo) get(ctx context.Context, query, id string) (*entity.Sale, error) {
	var s entity.Sale
	var docType int
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Folio, &s.Provisional, &docType, &s.NetAmount, &s.TaxRate, &s.TaxAmount, &s.TotalAmount,
		&s.CustomerID, &s.CashierID, &s.RelatedSaleID, &s.Reason, &s.DocumentBody, &s.DocumentDigest, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.DocType = entity.DocType(docType)
	return &s, nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate bloquea la venta original; serializa devoluciones concurrentes sobre ella.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) GetLines(ctx context.Context, saleID string) ([]*entity.SaleLine, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, sale_id, product_id, quantity, unit_price, subtotal FROM sale_lines WHERE sale_id = $1 ORDER BY seq`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	var out []*entity.SaleLine
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (r *SaleRepo) ReturnedQuantities(ctx context.Context, originalSaleID string) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.product_id, SUM(l.quantity)
		FROM sale_lines l JOIN sales s ON s.id = l.sale_id
		WHERE s.related_sale_id = $1
		GROUP BY l.product_id`, originalSaleID)
	if err != nil {
		return nil, fmt.Errorf("returned quantities: %w", err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var pid string
		var qty decimal.Decimal
		if err := rows.Scan(&pid, &qty); err != nil {
			return nil, fmt.Errorf("scan returned quantity: %w", err)
		}
		out[pid] = qty
	}
	return out, rows.Err()
}

func (r *SaleRepo) AttachDocument(ctx context.Context, saleID string, body []byte, digest string) error {
	tag, err := r.q.Exec(ctx, `UPDATE sales SET document_body = $2, document_digest = $3 WHERE id = $1`, saleID, body, digest)
	if err != nil {
		return fmt.Errorf("attach document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound("venta", saleID)
	}
	return nil
}
