package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation records money pledged by a donor to an NGO. Rows are immutable.
type Donation struct {
	ID            string          `db:"id" json:"id"`
	DonorID       *string         `db:"donor_id" json:"donor"`
	DonorUsername *string         `db:"donor_username" json:"donor_username"`
	NGOID         string          `db:"ngo_id" json:"ngo"`
	NGOUsername   string          `db:"ngo_username" json:"ngo_username"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	DonatedAt     time.Time       `db:"donated_at" json:"donated_at"`
	Message       *string         `db:"message" json:"message,omitempty"`
	TransactionID string          `db:"transaction_id" json:"transaction_id"`
}

// DonationFilter scopes donation queries. Exactly one of the IDs is set.
type DonationFilter struct {
	NGOID   string
	DonorID string
	Page    PageRequest
}

// DonorRole reports whether accounts with the role may donate.
func DonorRole(role UserRole) bool {
	switch role {
	case RoleCorporate, RoleVolunteer:
		return true
	case RoleNGO:
		return false
	default:
		return false
	}
}
