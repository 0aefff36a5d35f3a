package dto

import "time"

// RegisterFolioRangeRequest alta de un CAF.
type RegisterFolioRangeRequest struct {
	DocType          int    `json:"doc_type" validate:"required,oneof=33 34 39 61"`
	RangeStart       int64  `json:"range_start" validate:"required,min=1"`
	RangeEnd         int64  `json:"range_end" validate:"required,gtefield=RangeStart"`
	AuthorizationXML string `json:"authorization_xml"`
}

// FolioRangeResponse rango con su capacidad restante.
type FolioRangeResponse struct {
	ID         string    `json:"id"`
	DocType    int       `json:"doc_type"`
	RangeStart int64     `json:"range_start"`
	RangeEnd   int64     `json:"range_end"`
	LastUsed   int64     `json:"last_used"`
	Remaining  int64     `json:"remaining"`
	CreatedAt  time.Time `json:"created_at"`
}
