package domain

import "time"

// Delivery channels.
const (
	ChannelPhone = "phone"
	ChannelEmail = "email"
)

// Purposes. Purpose changes validation policy: verification is first-time
// proofing only and is refused for existing identities.
const (
	PurposeVerification  = "verification"
	PurposeSignin        = "signin"
	PurposeMfa           = "mfa"
	PurposePasswordReset = "password_reset"
)

func ValidChannel(channel string) bool {
	return channel == ChannelPhone || channel == ChannelEmail
}

func ValidPurpose(purpose string) bool {
	switch purpose {
	case PurposeVerification, PurposeSignin, PurposeMfa, PurposePasswordReset:
		return true
	}
	return false
}

// OtpChallenge is the live challenge for one (channel, target, purpose) tuple.
// The code itself is never stored, only its hash.
type OtpChallenge struct {
	CodeHash  string    `json:"code_hash"`
	Channel   string    `json:"channel"`
	Target    string    `json:"target"`
	Purpose   string    `json:"purpose"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OtpAudit is the persisted trail of issued challenges (no plaintext codes).
type OtpAudit struct {
	ID         string    `json:"id"`
	UserID     *string   `json:"user_id,omitempty"`
	Channel    string    `json:"channel"`
	Target     string    `json:"target"`
	Purpose    string    `json:"purpose"`
	IssuedAt   time.Time `json:"issued_at"`
	ValidUntil time.Time `json:"valid_until"`
	IsVerified bool      `json:"is_verified"`
}
