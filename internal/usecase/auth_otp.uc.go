package usecase

import (
	"context"
	"errors"

	"auth-service/internal/domain"
	"auth-service/pkg/utils"
	"auth-service/pkg/xerrors"
)

// SendOtp applies the purpose policy before handing off to the otp service:
// verification is first-time proofing only and is refused for identities that
// already resolve to an account, while the other purposes require one.
func (uc *AuthUsecase) SendOtp(ctx context.Context, channel, target, purpose string) error {
	if target == "" {
		return xerrors.New(xerrors.KindValidation, "target is required")
	}
	if !domain.ValidChannel(channel) {
		return xerrors.Wrap(xerrors.KindValidation, "unsupported channel", xerrors.ErrInvalidChannel)
	}
	if !domain.ValidPurpose(purpose) {
		return xerrors.Wrap(xerrors.KindValidation, "unsupported purpose", xerrors.ErrInvalidPurpose)
	}

	if channel == domain.ChannelEmail && !utils.ValidateEmail(target) {
		return xerrors.Wrap(xerrors.KindValidation, "invalid email format", xerrors.ErrInvalidEmailFormat)
	}
	if channel == domain.ChannelPhone && !utils.ValidatePhone(target) {
		return xerrors.Wrap(xerrors.KindValidation, "invalid phone format", xerrors.ErrInvalidPhoneFormat)
	}

	user, err := uc.lookupByTarget(ctx, channel, target)
	if err != nil && !errors.Is(err, xerrors.ErrUserNotFound) {
		return xerrors.Wrap(xerrors.KindInternal, "lookup user", err)
	}

	if purpose == domain.PurposeVerification {
		if user != nil {
			return xerrors.New(xerrors.KindConflict, "identity already registered")
		}
		return uc.otpSvc.Send(ctx, channel, normalizeTarget(channel, target), purpose, nil)
	}

	if user == nil {
		return xerrors.Wrap(xerrors.KindNotFound, "no account for this identity", xerrors.ErrUserNotFound)
	}
	return uc.otpSvc.Send(ctx, channel, normalizeTarget(channel, target), purpose, &user.ID)
}

// VerifyOtp checks a code against the live challenge for the tuple.
func (uc *AuthUsecase) VerifyOtp(ctx context.Context, channel, target, purpose, code string) error {
	if target == "" || code == "" {
		return xerrors.New(xerrors.KindValidation, "target and code are required")
	}
	if !domain.ValidChannel(channel) {
		return xerrors.Wrap(xerrors.KindValidation, "unsupported channel", xerrors.ErrInvalidChannel)
	}
	if !domain.ValidPurpose(purpose) {
		return xerrors.Wrap(xerrors.KindValidation, "unsupported purpose", xerrors.ErrInvalidPurpose)
	}

	return uc.otpSvc.Verify(ctx, channel, normalizeTarget(channel, target), purpose, code)
}

func (uc *AuthUsecase) lookupByTarget(ctx context.Context, channel, target string) (*domain.User, error) {
	if channel == domain.ChannelEmail {
		return uc.userRepo.GetByEmail(ctx, utils.NormalizeEmail(target))
	}
	return uc.userRepo.GetByPhone(ctx, target)
}

func normalizeTarget(channel, target string) string {
	if channel == domain.ChannelEmail {
		return utils.NormalizeEmail(target)
	}
	return target
}
