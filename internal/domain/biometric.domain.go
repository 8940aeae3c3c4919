package domain

import "time"

// BiometricCredential is the device-bound alternate login factor. Only the
// token hash is kept; the plaintext is returned to the client exactly once.
type BiometricCredential struct {
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}
