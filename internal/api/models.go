package api

import (
	"github.com/cuddly-waffle/account-api/internal/domain"
	"github.com/cuddly-waffle/account-api/internal/service"
)

// CreateAccountRequest is the body of POST /api/users/accounts. Presence is
// checked by the service so that every missing field is reported at once.
type CreateAccountRequest struct {
	RealName string `json:"real_name" validate:"omitempty,max=255"`
	UserName string `json:"user_name" validate:"omitempty,max=255"`
	Email    string `json:"email"     validate:"omitempty,max=255"`
	Password string `json:"password"`
}

// UpdateAccountRequest is the body of PATCH /api/users/{id}/id.
// Empty fields keep their stored value.
type UpdateAccountRequest struct {
	NewRealName string `json:"new_real_name" validate:"omitempty,max=255"`
	NewUserName string `json:"new_user_name" validate:"omitempty,max=255"`
	NewEmail    string `json:"new_email"     validate:"omitempty,max=255"`
	NewPassword string `json:"new_password"`
}

// ProfileUpdate converts the request to the service input.
func (r UpdateAccountRequest) ProfileUpdate() service.ProfileUpdate {
	return service.ProfileUpdate{
		RealName: r.NewRealName,
		UserName: r.NewUserName,
		Email:    r.NewEmail,
		Password: r.NewPassword,
	}
}

// ChangePasswordRequest is the body of PATCH /api/users/password/{id}/id.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// LoginRequest is the body of POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"omitempty,max=255"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
