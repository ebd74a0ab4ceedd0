package dto

import "github.com/shopspring/decimal"

// CreateDonationRequest is submitted by a donor. The donor is taken from the token.
type CreateDonationRequest struct {
	NGOID         string          `json:"ngo" validate:"required,uuid"`
	Amount        decimal.Decimal `json:"amount"`
	Message       *string         `json:"message" validate:"omitempty,max=2000"`
	TransactionID string          `json:"transaction_id" validate:"omitempty,max=100"`
}

// ExportFormat selects the donation export renderer.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
