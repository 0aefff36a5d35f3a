package dto

// IssuerRequest cuerpo de PUT /api/issuer.
type IssuerRequest struct {
	TaxID        string `json:"tax_id" validate:"required,max=14"`
	LegalName    string `json:"legal_name" validate:"required,max=100"`
	BusinessLine string `json:"business_line" validate:"max=80"`
	ActivityCode string `json:"activity_code" validate:"omitempty,numeric,max=6"`
	Address      string `json:"address" validate:"max=70"`
	Commune      string `json:"commune" validate:"max=20"`
	City         string `json:"city" validate:"max=20"`
}

// IssuerResponse perfil del emisor.
type IssuerResponse struct {
	TaxID        string `json:"tax_id"`
	LegalName    string `json:"legal_name"`
	BusinessLine string `json:"business_line"`
	ActivityCode string `json:"activity_code"`
	Address      string `json:"address"`
	Commune      string `json:"commune"`
	City         string `json:"city"`
}
