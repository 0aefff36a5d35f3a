package entity

// IssuerProfile datos tributarios de la empresa emisora (uno por esquema de datos).
type IssuerProfile struct {
	ID           string
	TaxID        string // RUT emisor
	LegalName    string // razón social
	BusinessLine string // giro
	ActivityCode string // acteco SII
	Address      string
	Commune      string
	City         string
}
