package usecase

import (
	"context"
	"errors"
	"log"

	"auth-service/internal/domain"
	"auth-service/internal/rate"
	"auth-service/pkg/utils"
	"auth-service/pkg/xerrors"
)

// ForgotPassword issues a password-reset code. Malformed addresses are
// rejected, but an unknown address returns success so the endpoint cannot be
// used to enumerate accounts.
func (uc *AuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	if !utils.ValidateEmail(email) {
		return xerrors.Wrap(xerrors.KindValidation, "invalid email format", xerrors.ErrInvalidEmailFormat)
	}

	user, err := uc.userRepo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil
		}
		return xerrors.Wrap(xerrors.KindInternal, "lookup user", err)
	}

	if err := uc.sendResetCode(ctx, domain.ChannelEmail, user.Email, &user.ID); err != nil {
		return err
	}
	// Mirror to the phone channel when one is on file.
	if user.Phone != "" {
		if err := uc.sendResetCode(ctx, domain.ChannelPhone, user.Phone, &user.ID); err != nil {
			return err
		}
	}
	return nil
}

// sendResetCode dispatches a reset code but keeps limiter rejections out of
// the response. A 429 only for addresses that exist would tell a caller which
// addresses those are.
func (uc *AuthUsecase) sendResetCode(ctx context.Context, channel, target string, userID *string) error {
	err := uc.otpSvc.Send(ctx, channel, target, domain.PurposePasswordReset, userID)
	if errors.Is(err, rate.ErrTooSoon) || errors.Is(err, rate.ErrBlocked) {
		log.Printf("[WARN] password reset send throttled for %s %s: %v", channel, target, err)
		return nil
	}
	return err
}

// ResetPassword verifies the reset code and swaps the hash. The password
// policy runs first: a weak password fails with 400 before any code check, no
// matter how wrong the code is. Success revokes every existing session.
func (uc *AuthUsecase) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return xerrors.New(xerrors.KindValidation, "email, code and new password are required")
	}
	if ok, err := utils.ValidatePassword(newPassword); !ok {
		return xerrors.New(xerrors.KindValidation, err.Error())
	}
	if !utils.ValidateEmail(email) {
		return xerrors.Wrap(xerrors.KindValidation, "invalid email format", xerrors.ErrInvalidEmailFormat)
	}

	user, err := uc.userRepo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return xerrors.Wrap(xerrors.KindUnauthorized, "invalid or expired code", xerrors.ErrInvalidOTP)
		}
		return xerrors.Wrap(xerrors.KindInternal, "lookup user", err)
	}

	// The code may have been delivered over either configured channel.
	err = uc.otpSvc.Verify(ctx, domain.ChannelEmail, user.Email, domain.PurposePasswordReset, code)
	if err != nil && user.Phone != "" && xerrors.KindOf(err) == xerrors.KindUnauthorized {
		err = uc.otpSvc.Verify(ctx, domain.ChannelPhone, user.Phone, domain.PurposePasswordReset, code)
	}
	if err != nil {
		return err
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "hash password", err)
	}
	if err := uc.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "update password", err)
	}

	// Every device re-authenticates with the new password.
	if err := uc.sessionRepo.RevokeAll(ctx, user.ID, domain.RevokedReasonPasswordReset); err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "revoke sessions", err)
	}

	uc.publishEvent("password_reset", user.ID, nil)
	return nil
}
