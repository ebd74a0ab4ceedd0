package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole is the closed set of account roles.
type UserRole string

const (
	RoleNGO       UserRole = "ngo"
	RoleVolunteer UserRole = "volunteer"
	RoleCorporate UserRole = "corporate"
)

// Roles lists every valid role.
var Roles = []UserRole{RoleNGO, RoleVolunteer, RoleCorporate}

// ParseRole normalises raw input into a UserRole.
func ParseRole(raw string) (UserRole, error) {
	role := UserRole(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q", raw)
	}
	return role, nil
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleNGO, RoleVolunteer, RoleCorporate:
		return true
	default:
		return false
	}
}

// Label returns the display name of the role.
func (r UserRole) Label() string {
	switch r {
	case RoleNGO:
		return "NGO"
	case RoleVolunteer:
		return "Volunteer"
	case RoleCorporate:
		return "Corporate"
	default:
		return string(r)
	}
}

// User represents an account stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Role         UserRole   `db:"role" json:"role"`
	IsAdmin      bool       `db:"is_admin" json:"is_admin"`
	Active       bool       `db:"active" json:"-"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}

// Principal returns the identity used for authorization decisions.
func (u *User) Principal() *Principal {
	return &Principal{UserID: u.ID, Username: u.Username, Role: u.Role, IsAdmin: u.IsAdmin}
}

// UserFilter scopes profile listings.
type UserFilter struct {
	// OnlyID restricts the result to a single account when set.
	OnlyID string
	Page   PageRequest
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a normalised page/page_size pair.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest clamps page inputs to sane bounds.
func NewPageRequest(page, size int) PageRequest {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: size}
}

// Offset returns the row offset for the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Pagination renders response metadata for the page.
func (p PageRequest) Pagination(total int) *Pagination {
	return &Pagination{Page: p.Page, PageSize: p.PageSize, TotalCount: total}
}
