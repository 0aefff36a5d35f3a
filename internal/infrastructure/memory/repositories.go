package memory

import (
	"context"
	"sort"
	"time"

	"github.com/AstralMoonlight/torn/internal/domain"
	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Los repositorios solo se usan dentro de RunInTx, con el candado del Store tomado.

var (
	_ repository.FolioRangeRepository    = (*folioRepo)(nil)
	_ repository.ProductRepository       = (*productRepo)(nil)
	_ repository.StockMovementRepository = (*movementRepo)(nil)
	_ repository.CustomerRepository      = (*customerRepo)(nil)
	_ repository.SaleRepository          = (*saleRepo)(nil)
	_ repository.PaymentRepository       = (*paymentRepo)(nil)
	_ repository.CashSessionRepository   = (*cashSessionRepo)(nil)
	_ repository.IssuerRepository        = (*issuerRepo)(nil)
)

type folioRepo struct{ s *Store }

// LockDocType no-op: el candado global del Store ya serializa.
func (r *folioRepo) LockDocType(context.Context, entity.DocType) error { return nil }

func (r *folioRepo) Create(_ context.Context, fr *entity.FolioRange) error {
	r.s.data.ranges = append(r.s.data.ranges, *fr)
	return nil
}

func (r *folioRepo) ListByDocType(_ context.Context, docType entity.DocType) ([]*entity.FolioRange, error) {
	var out []*entity.FolioRange
	for _, fr := range r.s.data.ranges {
		if fr.DocType == docType {
			c := fr
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *folioRepo) ListAll(_ context.Context) ([]*entity.FolioRange, error) {
	out := make([]*entity.FolioRange, 0, len(r.s.data.ranges))
	for _, fr := range r.s.data.ranges {
		c := fr
		out = append(out, &c)
	}
	return out, nil
}

func (r *folioRepo) CountByDocType(_ context.Context, docType entity.DocType) (int, error) {
	n := 0
	for _, fr := range r.s.data.ranges {
		if fr.DocType == docType {
			n++
		}
	}
	return n, nil
}

// AllocateNext elige el rango más antiguo (created_at, luego range_start) con capacidad.
func (r *folioRepo) AllocateNext(_ context.Context, docType entity.DocType) (*entity.FolioRange, error) {
	best := -1
	for i, fr := range r.s.data.ranges {
		if fr.DocType != docType || fr.LastUsed >= fr.RangeEnd {
			continue
		}
		if best < 0 || older(fr, r.s.data.ranges[best]) {
			best = i
		}
	}
	if best < 0 {
		return nil, nil
	}
	fr := &r.s.data.ranges[best]
	next := fr.LastUsed + 1
	if next < fr.RangeStart {
		next = fr.RangeStart
	}
	fr.LastUsed = next
	c := *fr
	return &c, nil
}

func older(a, b entity.FolioRange) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.RangeStart < b.RangeStart
}

func (r *folioRepo) NextProvisional(_ context.Context, docType entity.DocType) (int64, error) {
	r.s.data.provisional[docType]++
	return r.s.data.provisional[docType], nil
}

type productRepo struct{ s *Store }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) UpdateStock(_ context.Context, id string, stock decimal.Decimal) error {
	p, ok := r.s.data.products[id]
	if !ok {
		return domain.NewNotFound("producto", id)
	}
	p.CurrentStock = stock
	p.UpdatedAt = time.Now()
	r.s.data.products[id] = p
	return nil
}

func (r *productRepo) ListByParent(_ context.Context, parentID string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.data.products {
		if p.ParentID == parentID {
			c := p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *productRepo) SetActive(_ context.Context, ids []string, active bool) (int, error) {
	n := 0
	for _, id := range ids {
		p, ok := r.s.data.products[id]
		if !ok {
			continue
		}
		p.Active = active
		r.s.data.products[id] = p
		n++
	}
	return n, nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.data.movements = append(r.s.data.movements, *m)
	return nil
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var all []*entity.StockMovement
	for _, m := range r.s.data.movements {
		if m.ProductID == productID {
			c := m
			all = append(all, &c)
		}
	}
	if offset > len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

type customerRepo struct{ s *Store }

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	c, ok := r.s.data.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *customerRepo) AdjustBalance(_ context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	c, ok := r.s.data.customers[id]
	if !ok {
		return decimal.Zero, domain.NewNotFound("cliente", id)
	}
	c.CurrentBalance = c.CurrentBalance.Add(delta)
	c.UpdatedAt = time.Now()
	r.s.data.customers[id] = c
	return c.CurrentBalance, nil
}

type saleRepo struct{ s *Store }

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.data.sales[sale.ID] = *sale
	return nil
}

func (r *saleRepo) CreateLine(_ context.Context, line *entity.SaleLine) error {
	r.s.data.lines = append(r.s.data.lines, *line)
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	s, ok := r.s.data.sales[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) GetLines(_ context.Context, saleID string) ([]*entity.SaleLine, error) {
	var out []*entity.SaleLine
	for _, l := range r.s.data.lines {
		if l.SaleID == saleID {
			c := l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *saleRepo) ReturnedQuantities(_ context.Context, originalSaleID string) (map[string]decimal.Decimal, error) {
	reversals := make(map[string]bool)
	for id, s := range r.s.data.sales {
		if s.RelatedSaleID == originalSaleID {
			reversals[id] = true
		}
	}
	out := make(map[string]decimal.Decimal)
	for _, l := range r.s.data.lines {
		if reversals[l.SaleID] {
			out[l.ProductID] = out[l.ProductID].Add(l.Quantity)
		}
	}
	return out, nil
}

func (r *saleRepo) AttachDocument(_ context.Context, saleID string, body []byte, digest string) error {
	s, ok := r.s.data.sales[saleID]
	if !ok {
		return domain.NewNotFound("venta", saleID)
	}
	s.DocumentBody = append([]byte(nil), body...)
	s.DocumentDigest = digest
	r.s.data.sales[saleID] = s
	return nil
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, p *entity.Payment) error {
	r.s.data.payments = append(r.s.data.payments, *p)
	return nil
}

func (r *paymentRepo) ListBySale(_ context.Context, saleID string) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for _, p := range r.s.data.payments {
		if p.SaleID == saleID {
			c := p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *paymentRepo) SumCashSince(_ context.Context, cashierID string, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.s.data.payments {
		if !p.Method.IsCash() {
			continue
		}
		sale, ok := r.s.data.sales[p.SaleID]
		if !ok || sale.CashierID != cashierID || sale.CreatedAt.Before(since) {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total, nil
}

type cashSessionRepo struct{ s *Store }

// LockCashier no-op: el candado global del Store ya serializa.
func (r *cashSessionRepo) LockCashier(context.Context, string) error { return nil }

func (r *cashSessionRepo) GetOpenByCashier(_ context.Context, cashierID string) (*entity.CashSession, error) {
	for _, cs := range r.s.data.sessions {
		if cs.CashierID == cashierID && cs.State == entity.SessionOpen {
			c := cs
			return &c, nil
		}
	}
	return nil, nil
}

func (r *cashSessionRepo) Create(_ context.Context, cs *entity.CashSession) error {
	r.s.data.sessions = append(r.s.data.sessions, *cs)
	return nil
}

func (r *cashSessionRepo) Update(_ context.Context, cs *entity.CashSession) error {
	for i := range r.s.data.sessions {
		if r.s.data.sessions[i].ID == cs.ID {
			r.s.data.sessions[i] = *cs
			return nil
		}
	}
	return domain.NewNotFound("sesión de caja", cs.ID)
}

type issuerRepo struct{ s *Store }

func (r *issuerRepo) Get(_ context.Context) (*entity.IssuerProfile, error) {
	if r.s.data.issuer == nil {
		return nil, nil
	}
	c := *r.s.data.issuer
	return &c, nil
}

func (r *issuerRepo) Save(_ context.Context, p *entity.IssuerProfile) error {
	c := *p
	r.s.data.issuer = &c
	return nil
}
