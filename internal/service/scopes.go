package service

import "github.com/noah-isme/volunteer-hub-api/internal/models"

// EventScope returns the public listing filter. Only published events are listed,
// whoever asks.
func EventScope(page models.PageRequest) models.EventFilter {
	return models.EventFilter{Page: page}
}

// OwnEventScope lists every event the NGO owns, published or not.
func OwnEventScope(p *models.Principal, page models.PageRequest) models.EventFilter {
	return models.EventFilter{OwnerID: p.UserID, Page: page}
}

// EventVisible reports whether p may see the event.
func EventVisible(p *models.Principal, e *models.Event) bool {
	if e.IsPublished {
		return true
	}
	return p.Authenticated() && e.CreatedBy == p.UserID
}

// ApplicationScope limits applications to those the principal is party to.
// The zero filter matches nothing.
func ApplicationScope(p *models.Principal, page models.PageRequest) models.ApplicationFilter {
	filter := models.ApplicationFilter{Page: page}
	if !p.Authenticated() {
		return filter
	}
	switch p.Role {
	case models.RoleNGO:
		filter.EventOwnerID = p.UserID
	case models.RoleVolunteer:
		filter.VolunteerID = p.UserID
	case models.RoleCorporate:
	}
	return filter
}

// ApplicationInScope is the single-row form of ApplicationScope.
func ApplicationInScope(p *models.Principal, a *models.VolunteerApplication) bool {
	if !p.Authenticated() {
		return false
	}
	switch p.Role {
	case models.RoleNGO:
		return a.EventOwnerID == p.UserID
	case models.RoleVolunteer:
		return a.VolunteerID == p.UserID
	case models.RoleCorporate:
		return false
	default:
		return false
	}
}

// DonationScope limits donations to those the principal received or gave.
func DonationScope(p *models.Principal, page models.PageRequest) models.DonationFilter {
	filter := models.DonationFilter{Page: page}
	if !p.Authenticated() {
		return filter
	}
	switch p.Role {
	case models.RoleNGO:
		filter.NGOID = p.UserID
	case models.RoleCorporate, models.RoleVolunteer:
		filter.DonorID = p.UserID
	}
	return filter
}

// DonationInScope is the single-row form of DonationScope.
func DonationInScope(p *models.Principal, d *models.Donation) bool {
	if !p.Authenticated() {
		return false
	}
	switch p.Role {
	case models.RoleNGO:
		return d.NGOID == p.UserID
	case models.RoleCorporate, models.RoleVolunteer:
		return d.DonorID != nil && *d.DonorID == p.UserID
	default:
		return false
	}
}

// ProfileScope lists every account for administrators and only the caller otherwise.
func ProfileScope(p *models.Principal, page models.PageRequest) models.UserFilter {
	if p.IsAdmin {
		return models.UserFilter{Page: page}
	}
	return models.UserFilter{OnlyID: p.UserID, Page: page}
}

// ProfileInScope is the single-row form of ProfileScope.
func ProfileInScope(p *models.Principal, userID string) bool {
	return p.Authenticated() && (p.IsAdmin || p.UserID == userID)
}
