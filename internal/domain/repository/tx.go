package repository

import "context"

// Repositories agrupa los repositorios atados a una misma transacción.
type Repositories struct {
	Folios       FolioRangeRepository
	Products     ProductRepository
	Movements    StockMovementRepository
	Customers    CustomerRepository
	Sales        SaleRepository
	Payments     PaymentRepository
	CashSessions CashSessionRepository
	Issuer       IssuerRepository
}

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace rollback completo; si no, commit.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
