package repository

import (
	"context"
	"strconv"

	"auth-service/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OTPRepo keeps the audit trail of issued challenges. Live codes are redis-only.
type OTPRepo struct {
	db *pgxpool.Pool
}

func NewOTPRepo(db *pgxpool.Pool) *OTPRepo {
	return &OTPRepo{db: db}
}

func (r *OTPRepo) Create(ctx context.Context, a *domain.OtpAudit) error {
	id, err := strconv.ParseInt(a.ID, 10, 64)
	if err != nil {
		return err
	}

	var uid *int64
	if a.UserID != nil {
		parsed, err := strconv.ParseInt(*a.UserID, 10, 64)
		if err == nil {
			uid = &parsed
		}
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO otp_audit (id, user_id, channel, target, purpose, issued_at, valid_until, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false)
	`, id, uid, a.Channel, a.Target, a.Purpose, a.IssuedAt, a.ValidUntil)
	return err
}

// MarkVerified flips the newest audit row for the tuple.
func (r *OTPRepo) MarkVerified(ctx context.Context, channel, target, purpose string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE otp_audit
		SET is_verified = true
		WHERE id = (
			SELECT id FROM otp_audit
			WHERE channel = $1 AND target = $2 AND purpose = $3
			ORDER BY issued_at DESC
			LIMIT 1
		)
	`, channel, target, purpose)
	return err
}
