package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"auth-service/internal/domain"
	"auth-service/pkg/jwtutil"
	"auth-service/pkg/xerrors"
)

// EstablishSession mints a new refresh session for the user, atomically
// revoking any prior live one, and returns the signed token pair. The previous
// device's tokens surface as LOGGED_IN_ELSEWHERE on their next use.
func (uc *AuthUsecase) EstablishSession(ctx context.Context, userID string) (*domain.TokenPair, error) {
	return uc.establishSession(ctx, userID, domain.RevokedReasonSuperseded)
}

func (uc *AuthUsecase) establishSession(ctx context.Context, userID, supersedeReason string) (*domain.TokenPair, error) {
	now := time.Now()
	session := &domain.RefreshSession{
		ID:        uc.sf.Generate(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(uc.refreshTTL),
	}

	if err := uc.sessionRepo.Establish(ctx, session, supersedeReason); err != nil {
		return nil, xerrors.Wrap(xerrors.KindInternal, "establish session", err)
	}

	pair, err := uc.signPair(userID, session.ID)
	if err != nil {
		return nil, err
	}

	uc.publishEvent("session_established", userID, map[string]string{"session_id": session.ID})

	return pair, nil
}

func (uc *AuthUsecase) signPair(userID, sessionID string) (*domain.TokenPair, error) {
	access, err := uc.jwtGen.Generate(userID, sessionID, jwtutil.TokenTypeAccess, uc.accessTTL)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindInternal, "sign access token", err)
	}
	refresh, err := uc.jwtGen.Generate(userID, sessionID, jwtutil.TokenTypeRefresh, uc.refreshTTL)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindInternal, "sign refresh token", err)
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RotateTokens exchanges a live refresh token for a fresh pair, revoking the
// record it references. A token superseded by a newer signin is rejected with
// LOGGED_IN_ELSEWHERE so the client can explain what happened.
func (uc *AuthUsecase) RotateTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := uc.jwtVer.ParseAndValidate(refreshToken)
	if err != nil {
		if errors.Is(err, jwtutil.ErrExpiredToken) {
			return nil, xerrors.NewCode(xerrors.KindUnauthorized, xerrors.CodeTokenExpired, "refresh token expired")
		}
		return nil, xerrors.NewCode(xerrors.KindUnauthorized, xerrors.CodeTokenInvalid, "invalid refresh token")
	}
	if claims.TokenType != jwtutil.TokenTypeRefresh {
		return nil, xerrors.NewCode(xerrors.KindUnauthorized, xerrors.CodeTokenInvalid, "invalid refresh token")
	}

	if err := uc.checkSessionLive(ctx, claims.SessionID); err != nil {
		return nil, err
	}

	// Establish both revokes the old record and inserts the new one. The old
	// record is marked rotated, not superseded, so replaying the spent token
	// reads as a plain invalid token rather than LOGGED_IN_ELSEWHERE.
	return uc.establishSession(ctx, claims.UserID, domain.RevokedReasonRotated)
}

// ValidateAccess performs the two-tier check: cheap signature/expiry first,
// then a liveness lookup against the session record. The liveness lookup is
// what makes logout and supersession effective against otherwise-stateless
// access tokens.
func (uc *AuthUsecase) ValidateAccess(ctx context.Context, accessToken string) (*jwtutil.Claims, error) {
	claims, err := uc.jwtVer.ParseAndValidate(accessToken)
	if err != nil {
		if errors.Is(err, jwtutil.ErrExpiredToken) {
			return nil, xerrors.NewCode(xerrors.KindUnauthorized, xerrors.CodeTokenExpired, "access token expired")
		}
		return nil, xerrors.NewCode(xerrors.KindUnauthorized, xerrors.CodeTokenInvalid, "invalid access token")
	}
	if claims.TokenType != jwtutil.TokenTypeAccess {
		return nil, xerrors.NewCode(xerrors.KindUnauthorized, xerrors.CodeTokenInvalid, "invalid access token")
	}

	if err := uc.checkSessionLive(ctx, claims.SessionID); err != nil {
		return nil, err
	}

	return claims, nil
}

func (uc *AuthUsecase) checkSessionLive(ctx context.Context, sessionID string) error {
	session, err := uc.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, xerrors.ErrSessionNotFound) {
			return xerrors.NewCode(xerrors.KindUnauthorized, xerrors.CodeTokenInvalid, "session not found")
		}
		return xerrors.Wrap(xerrors.KindInternal, "load session", err)
	}

	if session.Revoked {
		if session.RevokedReason == domain.RevokedReasonSuperseded {
			return xerrors.NewCode(xerrors.KindUnauthorized, xerrors.CodeLoggedInElsewhere, "logged in elsewhere")
		}
		return xerrors.NewCode(xerrors.KindUnauthorized, xerrors.CodeTokenInvalid, "session revoked")
	}
	if session.Expired(time.Now()) {
		return xerrors.NewCode(xerrors.KindUnauthorized, xerrors.CodeTokenExpired, "session expired")
	}
	return nil
}

// Logout revokes the session behind the presented access token.
func (uc *AuthUsecase) Logout(ctx context.Context, claims *jwtutil.Claims) error {
	if err := uc.sessionRepo.Revoke(ctx, claims.SessionID, domain.RevokedReasonLogout); err != nil {
		if errors.Is(err, xerrors.ErrSessionNotFound) {
			// Already revoked; logout stays idempotent.
			return nil
		}
		return xerrors.Wrap(xerrors.KindInternal, "revoke session", err)
	}

	uc.publishEvent("logout", claims.UserID, map[string]string{"session_id": claims.SessionID})
	return nil
}

func (uc *AuthUsecase) publishEvent(eventType, userID string, data interface{}) {
	if uc.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := uc.events.Publish(ctx, eventType, userID, data); err != nil {
			log.Printf("[WARN] failed to publish %s event for user %s: %v", eventType, userID, err)
		}
	}()
}
