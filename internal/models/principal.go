package models

// Principal is the authenticated identity a request acts as.
// A nil *Principal means the caller is anonymous.
type Principal struct {
	UserID   string
	Username string
	Role     UserRole
	IsAdmin  bool
}

// Authenticated reports whether p identifies a user.
func (p *Principal) Authenticated() bool {
	return p != nil && p.UserID != ""
}

// Is reports whether p is authenticated with the given role.
func (p *Principal) Is(role UserRole) bool {
	return p.Authenticated() && p.Role == role
}
