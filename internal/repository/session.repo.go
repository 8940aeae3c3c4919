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

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*domain.RefreshSession, error) {
	var s domain.RefreshSession
	var sessionID, userID int64
	err := row.Scan(
		&sessionID,
		&userID,
		&s.IssuedAt,
		&s.ExpiresAt,
		&s.Revoked,
		&s.RevokedReason,
		&s.RevokedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	s.ID = strconv.FormatInt(sessionID, 10)
	s.UserID = strconv.FormatInt(userID, 10)
	return &s, nil
}

// Establish revokes the user's live session and inserts the new record in one
// transaction. A per-user advisory lock makes concurrent signins serialize
// even when no live row exists to lock (two signins racing right after a
// logout must not both insert): whichever transaction commits last wins, the
// other device's token is observed as revoked on next use.
func (r *SessionRepository) Establish(ctx context.Context, s *domain.RefreshSession, supersedeReason string) error {
	sid, err := strconv.ParseInt(s.ID, 10, 64)
	if err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "invalid session id", err)
	}
	uid, err := strconv.ParseInt(s.UserID, 10, 64)
	if err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "invalid user id", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Advisory lock keyed on the user id. Row locks alone are not enough:
	// with zero live rows there is nothing to lock and both transactions
	// would proceed to insert.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, uid); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE refresh_sessions
		SET revoked = true, revoked_reason = $2, revoked_at = now()
		WHERE user_id = $1 AND revoked = false
	`, uid, supersedeReason); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO refresh_sessions (id, user_id, issued_at, expires_at, revoked)
		VALUES ($1, $2, $3, $4, false)
	`, sid, uid, s.IssuedAt, s.ExpiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*domain.RefreshSession, error) {
	sid, err := strconv.ParseInt(sessionID, 10, 64)
	if err != nil {
		return nil, xerrors.ErrSessionNotFound
	}
	return scanSession(r.db.QueryRow(ctx, `
		SELECT id, user_id, issued_at, expires_at, revoked, COALESCE(revoked_reason, ''), revoked_at
		FROM refresh_sessions
		WHERE id = $1
		LIMIT 1
	`, sid))
}

func (r *SessionRepository) Revoke(ctx context.Context, sessionID, reason string) error {
	sid, err := strconv.ParseInt(sessionID, 10, 64)
	if err != nil {
		return xerrors.ErrSessionNotFound
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_sessions
		SET revoked = true, revoked_reason = $2, revoked_at = now()
		WHERE id = $1 AND revoked = false
	`, sid, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrSessionNotFound
	}
	return nil
}

// RevokeAll invalidates every live session of the user (logout everywhere,
// password reset).
func (r *SessionRepository) RevokeAll(ctx context.Context, userID, reason string) error {
	uid, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return xerrors.ErrUserNotFound
	}
	_, err = r.db.Exec(ctx, `
		UPDATE refresh_sessions
		SET revoked = true, revoked_reason = $2, revoked_at = now()
		WHERE user_id = $1 AND revoked = false
	`, uid, reason)
	return err
}
