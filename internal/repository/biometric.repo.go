package repository

import (
	"context"
	"errors"
	"strconv"

	"auth-service/internal/domain"
	"auth-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BiometricRepository struct {
	db *pgxpool.Pool
}

func NewBiometricRepository(db *pgxpool.Pool) *BiometricRepository {
	return &BiometricRepository{db: db}
}

// Upsert replaces any prior credential for the user; the old token is
// silently invalidated.
func (r *BiometricRepository) Upsert(ctx context.Context, c *domain.BiometricCredential) error {
	uid, err := strconv.ParseInt(c.UserID, 10, 64)
	if err != nil {
		return xerrors.ErrUserNotFound
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO biometric_credentials (user_id, token_hash, enabled, created_at)
		VALUES ($1, $2, true, now())
		ON CONFLICT (user_id)
		DO UPDATE SET token_hash = EXCLUDED.token_hash, enabled = true, created_at = now()
	`, uid, c.TokenHash)
	return err
}

func (r *BiometricRepository) Get(ctx context.Context, userID string) (*domain.BiometricCredential, error) {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, xerrors.ErrNotFound
	}

	var c domain.BiometricCredential
	var storedUID int64
	err = r.db.QueryRow(ctx, `
		SELECT user_id, token_hash, enabled, created_at
		FROM biometric_credentials
		WHERE user_id = $1
		LIMIT 1
	`, uid).Scan(&storedUID, &c.TokenHash, &c.Enabled, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.UserID = strconv.FormatInt(storedUID, 10)
	return &c, nil
}

func (r *BiometricRepository) Delete(ctx context.Context, userID string) error {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return xerrors.ErrUserNotFound
	}
	_, err = r.db.Exec(ctx, `DELETE FROM biometric_credentials WHERE user_id = $1`, uid)
	return err
}
