package models

import (
	"fmt"
	"time"
)

// ApplicationStatus is the review state of a volunteer application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	default:
		return false
	}
}

// Final reports whether no further transitions are possible.
func (s ApplicationStatus) Final() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// CanTransition validates a status change. Reviews only move forward out of pending.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) error {
	if !next.Valid() {
		return fmt.Errorf("unknown status %q", next)
	}
	switch s {
	case ApplicationPending:
		return nil
	case ApplicationApproved, ApplicationRejected:
		if next == s {
			return nil
		}
		return fmt.Errorf("application already %s", s)
	default:
		return fmt.Errorf("unknown status %q", s)
	}
}

// VolunteerApplication links a volunteer to an event.
type VolunteerApplication struct {
	ID                string            `db:"id" json:"id"`
	EventID           string            `db:"event_id" json:"event"`
	EventTitle        string            `db:"event_title" json:"event_title"`
	EventOwnerID      string            `db:"event_owner_id" json:"-"`
	VolunteerID       string            `db:"volunteer_id" json:"volunteer"`
	VolunteerUsername string            `db:"volunteer_username" json:"volunteer_username"`
	Message           *string           `db:"message" json:"message,omitempty"`
	Status            ApplicationStatus `db:"status" json:"status"`
	AppliedAt         time.Time         `db:"applied_at" json:"applied_at"`
	ReviewedAt        *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CertificateIssued bool              `db:"certificate_issued" json:"certificate_issued"`
	CertificateURL    *string           `db:"certificate_url" json:"certificate_url"`
}

// ApplicationFilter scopes application queries. Exactly one of the IDs is set.
type ApplicationFilter struct {
	EventOwnerID string
	VolunteerID  string
	Page         PageRequest
}
