package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"auth-service/internal/domain"
	"auth-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, phone, password_hash, first_name, last_name,
	preferred_login_method, mfa_enabled, biometric_enabled,
	created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var userID int64
	err := row.Scan(
		&userID,
		&u.Email,
		&u.Phone,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.PreferredLoginMethod,
		&u.MfaEnabled,
		&u.BiometricEnabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.ID = strconv.FormatInt(userID, 10)
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	uid, err := strconv.ParseInt(u.ID, 10, 64)
	if err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "invalid user id", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO users (
			id, email, phone, password_hash, first_name, last_name,
			preferred_login_method, mfa_enabled, biometric_enabled,
			created_at, updated_at
		) VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8, $9, now(), now())
	`, uid, u.Email, u.Phone, u.PasswordHash, u.FirstName, u.LastName,
		u.PreferredLoginMethod, u.MfaEnabled, u.BiometricEnabled)

	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			if strings.Contains(xerrors.PGConstraint(err), "phone") {
				return xerrors.Wrap(xerrors.KindConflict, "phone already in use", xerrors.ErrPhoneAlreadyInUse)
			}
			return xerrors.Wrap(xerrors.KindConflict, "email already in use", xerrors.ErrEmailAlreadyInUse)
		}
		return err
	}
	return nil
}

// GetByEmail is case-insensitive; rows are stored lower-cased but lookups
// still normalize to cover pre-normalization rows.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
		LIMIT 1
	`, email))
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE phone = $1
		LIMIT 1
	`, phone))
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, xerrors.ErrUserNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
		LIMIT 1
	`, uid))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, userID, passwordHash)
}

func (r *UserRepository) SetMfaEnabled(ctx context.Context, userID string, enabled bool) error {
	return r.exec(ctx, `
		UPDATE users SET mfa_enabled = $2, updated_at = now() WHERE id = $1
	`, userID, enabled)
}

func (r *UserRepository) SetBiometricEnabled(ctx context.Context, userID string, enabled bool) error {
	return r.exec(ctx, `
		UPDATE users SET biometric_enabled = $2, updated_at = now() WHERE id = $1
	`, userID, enabled)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID, firstName, lastName string) error {
	return r.exec(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, updated_at = now() WHERE id = $1
	`, userID, firstName, lastName)
}

func (r *UserRepository) UpdatePreferredLoginMethod(ctx context.Context, userID, method string) error {
	return r.exec(ctx, `
		UPDATE users SET preferred_login_method = $2, updated_at = now() WHERE id = $1
	`, userID, method)
}

// Delete purges the user and every owned record in one transaction.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return xerrors.ErrUserNotFound
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, q := range []string{
		`DELETE FROM refresh_sessions WHERE user_id = $1`,
		`DELETE FROM biometric_credentials WHERE user_id = $1`,
		`DELETE FROM otp_audit WHERE user_id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, uid); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) exec(ctx context.Context, query, userID string, args ...any) error {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return xerrors.ErrUserNotFound
	}

	execArgs := append([]any{uid}, args...)
	tag, err := r.db.Exec(ctx, query, execArgs...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrUserNotFound
	}
	return nil
}
