package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo. Puede ser variante de un padre (ParentID);
// el stock vive en el nodo que tiene TracksStock.
type Product struct {
	ID           string
	ParentID     string // vacío si es raíz
	SKU          string
	Name         string
	NetPrice     decimal.Decimal // precio sin IVA
	Active       bool
	TracksStock  bool
	CurrentStock decimal.Decimal
	UnitMeasure  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
