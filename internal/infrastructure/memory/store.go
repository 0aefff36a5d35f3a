// Package memory implementación en memoria de los repositorios. Cada transacción toma un candado global
// y trabaja sobre el estado vivo; si el callback falla se restaura la foto tomada al inicio.
package memory

import (
	"context"
	"sync"

	"github.com/AstralMoonlight/torn/internal/domain/entity"
	"github.com/AstralMoonlight/torn/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

type state struct {
	ranges      []entity.FolioRange
	provisional map[entity.DocType]int64
	products    map[string]entity.Product
	movements   []entity.StockMovement
	customers   map[string]entity.Customer
	sales       map[string]entity.Sale
	lines       []entity.SaleLine
	payments    []entity.Payment
	sessions    []entity.CashSession
	issuer      *entity.IssuerProfile
}

func newState() state {
	return state{
		provisional: make(map[entity.DocType]int64),
		products:    make(map[string]entity.Product),
		customers:   make(map[string]entity.Customer),
		sales:       make(map[string]entity.Sale),
	}
}

func (s state) clone() state {
	c := state{
		ranges:      append([]entity.FolioRange(nil), s.ranges...),
		provisional: cloneMap(s.provisional),
		products:    cloneMap(s.products),
		movements:   append([]entity.StockMovement(nil), s.movements...),
		customers:   cloneMap(s.customers),
		sales:       cloneMap(s.sales),
		lines:       append([]entity.SaleLine(nil), s.lines...),
		payments:    append([]entity.Payment(nil), s.payments...),
		sessions:    append([]entity.CashSession(nil), s.sessions...),
	}
	if s.issuer != nil {
		iss := *s.issuer
		c.issuer = &iss
	}
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store almacén en memoria; sirve como TxRunner y como fuente de datos de prueba.
type Store struct {
	mu   sync.Mutex
	data state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// RunInTx serializa las transacciones. Un error del callback deja el estado como estaba.
// Igual que en PostgreSQL, la cancelación del request no interrumpe la unidad de trabajo.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(ctx, s.repositories()); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) repositories() repository.Repositories {
	return repository.Repositories{
		Folios:       &folioRepo{s: s},
		Products:     &productRepo{s: s},
		Movements:    &movementRepo{s: s},
		Customers:    &customerRepo{s: s},
		Sales:        &saleRepo{s: s},
		Payments:     &paymentRepo{s: s},
		CashSessions: &cashSessionRepo{s: s},
		Issuer:       &issuerRepo{s: s},
	}
}

// Carga de datos (catálogo, clientes, emisor) fuera de transacción.

// PutProduct inserta o reemplaza un producto.
func (s *Store) PutProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

// PutCustomer inserta o reemplaza un cliente.
func (s *Store) PutCustomer(c entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.customers[c.ID] = c
}

// SetIssuer configura el emisor.
func (s *Store) SetIssuer(p entity.IssuerProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.issuer = &p
}

// PutFolioRange agrega un rango tal cual (sin validar superposición).
func (s *Store) PutFolioRange(r entity.FolioRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.ranges = append(s.data.ranges, r)
}

// Product lectura directa de un producto.
func (s *Store) Product(id string) (entity.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.products[id]
	return p, ok
}

// Customer lectura directa de un cliente.
func (s *Store) Customer(id string) (entity.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.customers[id]
	return c, ok
}

// Movements kardex completo de un producto.
func (s *Store) Movements(productID string) []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockMovement
	for _, m := range s.data.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// Sales todas las ventas y notas de crédito.
func (s *Store) Sales() []entity.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Sale, 0, len(s.data.sales))
	for _, v := range s.data.sales {
		out = append(out, v)
	}
	return out
}

// Payments todos los pagos.
func (s *Store) Payments() []entity.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Payment(nil), s.data.payments...)
}

// Sessions todas las sesiones de un cajero, en orden de apertura.
func (s *Store) Sessions(cashierID string) []entity.CashSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.CashSession
	for _, cs := range s.data.sessions {
		if cs.CashierID == cashierID {
			out = append(out, cs)
		}
	}
	return out
}

// FolioRanges rangos registrados, en orden de alta.
func (s *Store) FolioRanges() []entity.FolioRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.FolioRange(nil), s.data.ranges...)
}
