package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Clases de error del motor de ventas (sin dependencias de infraestructura).
// Cada error tipado responde a errors.Is tanto con su sentinela propio como con su clase.
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrPreconditionFailed = errors.New("precondición no cumplida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrIssuanceFailed     = errors.New("falló la emisión del documento tributario")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
)

// Errores concretos. Los de conflicto y precondición se envuelven en tipos con detalle.
var (
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrPaymentShortfall    = errors.New("pago insuficiente")
	ErrFolioRangeExhausted = errors.New("rango de folios agotado")
	ErrNoFolioRange        = errors.New("no existe rango de folios para el tipo de documento")
	ErrSessionAlreadyOpen  = errors.New("ya existe una caja abierta para el cajero")
	ErrNoOpenSession       = errors.New("no hay turno de caja abierto")
	ErrInactive            = errors.New("recurso inactivo")
	ErrIssuerNotConfigured = errors.New("emisor no configurado")
	ErrReturnExceedsSale   = errors.New("la devolución excede lo vendido")
	ErrFolioRangeOverlap   = errors.New("el rango de folios se superpone con uno existente")
	ErrReturnOfCreditNote  = errors.New("no se puede devolver una nota de crédito")
	ErrNotStockTracked     = errors.New("el producto no controla stock")
)

// NotFoundError indica qué entidad no existe.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFound construye un NotFoundError.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// PreconditionError envuelve la causa concreta (sin caja, inactivo, emisor) como precondición.
type PreconditionError struct {
	Cause  error
	Entity string
	ID     string
}

func (e *PreconditionError) Error() string {
	if e.Entity == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s %q: %s", e.Entity, e.ID, e.Cause.Error())
}

func (e *PreconditionError) Is(target error) bool { return target == ErrPreconditionFailed }

func (e *PreconditionError) Unwrap() error { return e.Cause }

// NewPrecondition construye un PreconditionError.
func NewPrecondition(cause error, entity, id string) error {
	return &PreconditionError{Cause: cause, Entity: entity, ID: id}
}

// InsufficientStockError detalla qué producto no tiene stock y cuánto hay.
type InsufficientStockError struct {
	ProductID string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: solicitado %s, disponible %s",
		e.ProductID, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock || target == ErrConflict
}

// ShortfallError detalla cuánto falta para cubrir el total.
type ShortfallError struct {
	Due      decimal.Decimal
	Tendered decimal.Decimal
	Missing  decimal.Decimal
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("pago insuficiente: total %s, pagado %s, faltan %s",
		e.Due.String(), e.Tendered.String(), e.Missing.String())
}

func (e *ShortfallError) Is(target error) bool {
	return target == ErrPaymentShortfall || target == ErrConflict
}

// RangeExhaustedError indica que todos los rangos del tipo de documento están consumidos.
type RangeExhaustedError struct {
	DocType  int
	LastUsed int64
}

func (e *RangeExhaustedError) Error() string {
	return fmt.Sprintf("rango de folios agotado para tipo %d (último folio usado %d)", e.DocType, e.LastUsed)
}

func (e *RangeExhaustedError) Is(target error) bool {
	return target == ErrFolioRangeExhausted || target == ErrConflict
}

// SessionAlreadyOpenError identifica la sesión que bloquea la apertura.
type SessionAlreadyOpenError struct {
	SessionID string
	OpenedAt  time.Time
}

func (e *SessionAlreadyOpenError) Error() string {
	return fmt.Sprintf("ya existe una caja abierta (ID: %s, inicio: %s)", e.SessionID, e.OpenedAt.Format(time.RFC3339))
}

func (e *SessionAlreadyOpenError) Is(target error) bool {
	return target == ErrSessionAlreadyOpen || target == ErrConflict
}

// ReturnExceedsSaleError indica que la cantidad a devolver supera lo que queda por devolver.
type ReturnExceedsSaleError struct {
	ProductID  string
	Requested  decimal.Decimal
	Returnable decimal.Decimal
}

func (e *ReturnExceedsSaleError) Error() string {
	return fmt.Sprintf("devolución de producto %s excede lo vendido: solicitado %s, devolvible %s",
		e.ProductID, e.Requested.String(), e.Returnable.String())
}

func (e *ReturnExceedsSaleError) Is(target error) bool {
	return target == ErrReturnExceedsSale || target == ErrConflict
}

// IssuanceFailedError envuelve el error del emisor de documentos.
type IssuanceFailedError struct {
	Err error
}

func (e *IssuanceFailedError) Error() string {
	return "emisión de documento: " + e.Err.Error()
}

func (e *IssuanceFailedError) Is(target error) bool { return target == ErrIssuanceFailed }

func (e *IssuanceFailedError) Unwrap() error { return e.Err }
