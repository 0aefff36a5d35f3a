package postgres

import (
	"context"
	"fmt"

	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

var _ repository.FolioRangeRepository = (*FolioRangeRepo)(nil)

// FolioRangeRepo rangos CAF y contadores provisionales.
type FolioRangeRepo struct {
	q Querier
}

// NewFolioRangeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFolioRangeRepository(q Querier) *FolioRangeRepo {
	return &FolioRangeRepo{q: q}
}

const folioRangeColumns = `id, doc_type, range_start, range_end, last_used, authorization_xml, created_at`

func scanFolioRange(row pgx.Row) (*entity.FolioRange, error) {
	var fr entity.FolioRange
	var docType int
	if err := row.Scan(&fr.ID, &docType, &fr.RangeStart, &fr.RangeEnd, &fr.LastUsed, &fr.AuthorizationXML, &fr.CreatedAt); err != nil {
		return nil, err
	}
	fr.DocType = entity.DocType(docType)
	return &fr, nil
}

// LockDocType candado consultivo de transacción por tipo de documento; lo libera el commit o rollback.
func (r *FolioRangeRepo) LockDocType(ctx context.Context, docType entity.DocType) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('folios:' || $1::text))`, int(docType)); err != nil {
		return fmt.Errorf("lock folio doc type: %w", err)
	}
	return nil
}

func (r *FolioRangeRepo) Create(ctx context.Context, fr *entity.FolioRange) error {
	query := `INSERT INTO folio_ranges (` + folioRangeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		fr.ID, int(fr.DocType), fr.RangeStart, fr.RangeEnd, fr.LastUsed, fr.AuthorizationXML, fr.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %w", domain.ErrConflict, domain.ErrFolioRangeOverlap)
		}
		return fmt.Errorf("insert folio range: %w", err)
	}
	return nil
}

func (r *FolioRangeRepo) list(ctx context.Context, query string, args ...any) ([]*entity.FolioRange, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folio ranges: %w", err)
	}
	defer rows.Close()
	var out []*entity.FolioRange
	for rows.Next() {
		fr, err := scanFolioRange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folio range: %w", err)
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

func (r *FolioRangeRepo) ListByDocType(ctx context.Context, docType entity.DocType) ([]*entity.FolioRange, error) {
	return r.list(ctx, `SELECT `+folioRangeColumns+` FROM folio_ranges WHERE doc_type = $1 ORDER BY created_at, range_start`, int(docType))
}

func (r *FolioRangeRepo) ListAll(ctx context.Context) ([]*entity.FolioRange, error) {
	return r.list(ctx, `SELECT `+folioRangeColumns+` FROM folio_ranges ORDER BY doc_type, created_at, range_start`)
}

func (r *FolioRangeRepo) CountByDocType(ctx context.Context, docType entity.DocType) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM folio_ranges WHERE doc_type = $1`, int(docType)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count folio ranges: %w", err)
	}
	return n, nil
}

// AllocateNext bloquea todos los rangos del tipo (orden estable) y avanza el más antiguo con capacidad.
// Bloquear el conjunto completo evita que un FOR UPDATE con filtro salte filas tras esperar el lock.
func (r *FolioRangeRepo) AllocateNext(ctx context.Context, docType entity.DocType) (*entity.FolioRange, error) {
	ranges, err := r.list(ctx,
		`SELECT `+folioRangeColumns+` FROM folio_ranges WHERE doc_type = $1 ORDER BY created_at, range_start FOR UPDATE`,
		int(docType))
	if err != nil {
		return nil, err
	}
	var target *entity.FolioRange
	for _, fr := range ranges {
		if fr.LastUsed < fr.RangeEnd {
			target = fr
			break
		}
	}
	if target == nil {
		return nil, nil
	}
	updated, err := scanFolioRange(r.q.QueryRow(ctx,
		`UPDATE folio_ranges SET last_used = GREATEST(last_used + 1, range_start)
		 WHERE id = $1 RETURNING `+folioRangeColumns,
		target.ID))
	if err != nil {
		return nil, fmt.Errorf("allocate folio: %w", err)
	}
	return updated, nil
}

func (r *FolioRangeRepo) NextProvisional(ctx context.Context, docType entity.DocType) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`INSERT INTO provisional_counters (doc_type, last_value) VALUES ($1, 1)
		 ON CONFLICT (doc_type) DO UPDATE SET last_value = provisional_counters.last_value + 1
		 RETURNING last_value`, int(docType)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next provisional folio: %w", err)
	}
	return n, nil
}
