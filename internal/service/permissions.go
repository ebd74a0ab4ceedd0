package service

import (
	"github.com/noah-isme/volunteer-hub-api/internal/models"
	appErrors "github.com/noah-isme/volunteer-hub-api/pkg/errors"
)

// Action names an operation subject to the permission gate.
type Action string

const (
	ActionEventRead           Action = "event.read"
	ActionEventListOwn        Action = "event.list_own"
	ActionEventCreate         Action = "event.create"
	ActionEventUpdate         Action = "event.update"
	ActionEventDelete         Action = "event.delete"
	ActionApplicationList     Action = "application.list"
	ActionApplicationRead     Action = "application.read"
	ActionApplicationCreate   Action = "application.create"
	ActionApplicationReview   Action = "application.review"
	ActionApplicationWithdraw Action = "application.withdraw"
	ActionCertificateIssue    Action = "certificate.issue"
	ActionDonationList        Action = "donation.list"
	ActionDonationRead        Action = "donation.read"
	ActionDonationCreate      Action = "donation.create"
	ActionDonationExport      Action = "donation.export"
	ActionProfileRead         Action = "profile.read"
	ActionProfileUpdate       Action = "profile.update"
	ActionProfileDelete       Action = "profile.delete"
)

// Authorize decides whether p may perform action. A nil principal is anonymous.
// Object-level checks (ownership, visibility) happen after lookup in each service.
func Authorize(p *models.Principal, action Action) error {
	if action == ActionEventRead {
		return nil
	}
	if !p.Authenticated() {
		return appErrors.ErrUnauthorized
	}

	switch action {
	case ActionEventListOwn, ActionEventCreate, ActionEventUpdate, ActionEventDelete,
		ActionApplicationReview, ActionCertificateIssue:
		return requireRole(p, models.RoleNGO)
	case ActionApplicationCreate, ActionApplicationWithdraw:
		return requireRole(p, models.RoleVolunteer)
	case ActionDonationCreate:
		if models.DonorRole(p.Role) {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, "only corporate and volunteer accounts can donate")
	case ActionApplicationList, ActionApplicationRead,
		ActionDonationList, ActionDonationRead, ActionDonationExport,
		ActionProfileRead, ActionProfileUpdate:
		return nil
	case ActionProfileDelete:
		if p.IsAdmin {
			return nil
		}
		return appErrors.ErrForbidden
	default:
		return appErrors.ErrForbidden
	}
}

func requireRole(p *models.Principal, want models.UserRole) error {
	switch p.Role {
	case models.RoleNGO, models.RoleVolunteer, models.RoleCorporate:
		if p.Role == want {
			return nil
		}
		return appErrors.ErrForbidden
	default:
		return appErrors.ErrForbidden
	}
}
