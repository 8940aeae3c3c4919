package domain

import "time"

// Login method preferences surfaced to the client.
const (
	LoginMethodPassword  = "password"
	LoginMethodOTP       = "otp"
	LoginMethodBiometric = "biometric"
)

type User struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"` // stored lower-cased, unique
	Phone                string    `json:"phone"` // E.164, unique
	PasswordHash         string    `json:"-"`
	FirstName            string    `json:"first_name,omitempty"`
	LastName             string    `json:"last_name,omitempty"`
	PreferredLoginMethod string    `json:"preferred_login_method,omitempty"`
	MfaEnabled           bool      `json:"mfa_enabled"`
	BiometricEnabled     bool      `json:"biometric_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// UserProfile is the credential-free view handed to the API.
type UserProfile struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone"`
	FirstName            string    `json:"first_name,omitempty"`
	LastName             string    `json:"last_name,omitempty"`
	PreferredLoginMethod string    `json:"preferred_login_method,omitempty"`
	MfaEnabled           bool      `json:"mfa_enabled"`
	BiometricEnabled     bool      `json:"biometric_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:                   u.ID,
		Email:                u.Email,
		Phone:                u.Phone,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		PreferredLoginMethod: u.PreferredLoginMethod,
		MfaEnabled:           u.MfaEnabled,
		BiometricEnabled:     u.BiometricEnabled,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}
