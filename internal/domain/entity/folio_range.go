package entity

import "time"

// FolioRange rango de folios autorizado (CAF) para un tipo de documento.
// LastUsed solo crece; un rango nuevo parte en RangeStart-1 (ningún folio emitido).
type FolioRange struct {
	ID               string
	DocType          DocType
	RangeStart       int64
	RangeEnd         int64
	LastUsed         int64
	AuthorizationXML string // XML del CAF entregado por el SII (opaco para el motor)
	CreatedAt        time.Time
}

// Remaining cantidad de folios aún disponibles en el rango.
func (r *FolioRange) Remaining() int64 {
	used := r.LastUsed
	if used < r.RangeStart-1 {
		used = r.RangeStart - 1
	}
	return r.RangeEnd - used
}

// Overlaps indica si dos rangos comparten algún folio.
func (r *FolioRange) Overlaps(start, end int64) bool {
	return start <= r.RangeEnd && r.RangeStart <= end
}
