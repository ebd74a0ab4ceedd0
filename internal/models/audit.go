package models

import "time"

// Audit actions recorded for security-relevant changes.
const (
	AuditActionRegister          = "REGISTER"
	AuditActionLogin             = "LOGIN"
	AuditActionLogout            = "LOGOUT"
	AuditActionProfileUpdate     = "PROFILE_UPDATE"
	AuditActionRoleChangeDropped = "ROLE_CHANGE_DROPPED"
	AuditActionProfileDelete     = "PROFILE_DELETE"
	AuditActionEventCreate       = "EVENT_CREATE"
	AuditActionEventUpdate       = "EVENT_UPDATE"
	AuditActionEventDelete       = "EVENT_DELETE"
	AuditActionApplicationReview = "APPLICATION_REVIEW"
	AuditActionDonationCreate    = "DONATION_CREATE"
	AuditActionCertificateFetch  = "CERTIFICATE_DOWNLOAD"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
