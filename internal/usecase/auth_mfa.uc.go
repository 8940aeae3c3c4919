package usecase

import (
	"context"
	"errors"

	"auth-service/internal/domain"
	"auth-service/pkg/xerrors"

	"github.com/redis/go-redis/v9"
)

const MfaMethodSMS = "sms"

// SetupMfa drives enrollment. With no code it issues a challenge to the
// user's phone and leaves MFA pending; with a code it verifies and enables.
func (uc *AuthUsecase) SetupMfa(ctx context.Context, userID, method, code string) (enabled bool, err error) {
	if method != MfaMethodSMS {
		return false, xerrors.New(xerrors.KindValidation, "unsupported mfa method")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, xerrors.Wrap(xerrors.KindNotFound, "user not found", err)
	}
	if user.Phone == "" {
		return false, xerrors.New(xerrors.KindValidation, "no phone number on file")
	}

	if code == "" {
		if err := uc.otpSvc.Send(ctx, domain.ChannelPhone, user.Phone, domain.PurposeMfa, &user.ID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := uc.otpSvc.Verify(ctx, domain.ChannelPhone, user.Phone, domain.PurposeMfa, code); err != nil {
		return false, err
	}

	if err := uc.userRepo.SetMfaEnabled(ctx, userID, true); err != nil {
		return false, xerrors.Wrap(xerrors.KindInternal, "enable mfa", err)
	}
	return true, nil
}

// SendMfaCode re-issues the challenge for a pending signin, invalidating any
// previously sent code.
func (uc *AuthUsecase) SendMfaCode(ctx context.Context, userID, method string) error {
	if method != MfaMethodSMS {
		return xerrors.New(xerrors.KindValidation, "unsupported mfa method")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return xerrors.Wrap(xerrors.KindNotFound, "user not found", err)
	}
	if !user.MfaEnabled {
		return xerrors.Wrap(xerrors.KindValidation, "mfa not enabled", xerrors.ErrMfaNotEnabled)
	}

	return uc.otpSvc.Send(ctx, domain.ChannelPhone, user.Phone, domain.PurposeMfa, &user.ID)
}

// VerifyMfaLogin completes an interrupted signin. The code is checked first;
// the mfa session is then consumed exactly once before the real token pair is
// minted.
func (uc *AuthUsecase) VerifyMfaLogin(ctx context.Context, userID, mfaSessionToken, code, method string) (*domain.TokenPair, error) {
	if userID == "" || mfaSessionToken == "" || code == "" {
		return nil, xerrors.New(xerrors.KindValidation, "user id, mfa session token and code are required")
	}
	if method != MfaMethodSMS {
		return nil, xerrors.New(xerrors.KindValidation, "unsupported mfa method")
	}

	owner, err := uc.cache.Get(ctx, "mfa_session", mfaSessionToken)
	if err == redis.Nil {
		return nil, xerrors.Wrap(xerrors.KindUnauthorized, "invalid or expired mfa session", xerrors.ErrMfaSessionInvalid)
	}
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindInternal, "load mfa session", err)
	}
	if owner != userID {
		return nil, xerrors.Wrap(xerrors.KindUnauthorized, "invalid or expired mfa session", xerrors.ErrMfaSessionInvalid)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindUnauthorized, "invalid or expired mfa session", xerrors.ErrMfaSessionInvalid)
	}

	if err := uc.otpSvc.Verify(ctx, domain.ChannelPhone, user.Phone, domain.PurposeMfa, code); err != nil {
		return nil, err
	}

	// Consume-once: a concurrent verify loses this GetDel and is rejected.
	if _, err := uc.cache.GetDel(ctx, "mfa_session", mfaSessionToken); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, xerrors.Wrap(xerrors.KindUnauthorized, "invalid or expired mfa session", xerrors.ErrMfaSessionInvalid)
		}
		return nil, xerrors.Wrap(xerrors.KindInternal, "consume mfa session", err)
	}

	return uc.EstablishSession(ctx, userID)
}

// DisableMfa turns the challenge off for future signins. Requires an
// already-authenticated caller; the handler enforces that.
func (uc *AuthUsecase) DisableMfa(ctx context.Context, userID string) error {
	if err := uc.userRepo.SetMfaEnabled(ctx, userID, false); err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return xerrors.Wrap(xerrors.KindNotFound, "user not found", err)
		}
		return xerrors.Wrap(xerrors.KindInternal, "disable mfa", err)
	}
	return nil
}
