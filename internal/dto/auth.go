package dto

import "github.com/noah-isme/volunteer-hub-api/internal/models"

// RegisterRequest is the public sign-up payload. Role defaults to volunteer.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
	Role      string `json:"role" validate:"omitempty,role"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// CheckUserRequest probes whether a username is taken.
type CheckUserRequest struct {
	Username string `json:"username"`
}

// CheckUserResponse answers a username probe.
type CheckUserResponse struct {
	Username string `json:"username"`
	Exists   bool   `json:"exists"`
}

// LogoutRequest revokes the given refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UpdateProfileRequest is the editable subset of a profile. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=1,max=150,username"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Role      *string `json:"role" validate:"omitempty,role"`
}

// ProfileResponse is the public shape of an account.
type ProfileResponse struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Role      models.UserRole `json:"role"`
	RoleLabel string          `json:"role_display"`
	IsAdmin   bool            `json:"is_admin"`
}

// NewProfileResponse maps a user into its response shape.
func NewProfileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		RoleLabel: u.Role.Label(),
		IsAdmin:   u.IsAdmin,
	}
}
