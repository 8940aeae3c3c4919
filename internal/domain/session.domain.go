package domain

import "time"

// Revocation reasons recorded on refresh sessions.
const (
	RevokedReasonLogout        = "logout"
	RevokedReasonSuperseded    = "superseded"
	RevokedReasonRotated       = "rotated"
	RevokedReasonPasswordReset = "password_reset"
	RevokedReasonAccountDelete = "account_deleted"
)

// RefreshSession is the single authoritative record behind a refresh token.
// At most one non-revoked row exists per user at any instant.
type RefreshSession struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	IssuedAt      time.Time  `json:"issued_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
	Revoked       bool       `json:"revoked"`
	RevokedReason string     `json:"revoked_reason,omitempty"`
	RevokedAt     *time.Time `json:"revoked_at,omitempty"`
}

func (s *RefreshSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// TokenPair is what a completed authentication hands back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
