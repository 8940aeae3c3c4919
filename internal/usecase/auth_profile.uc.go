package usecase

import (
	"context"
	"errors"

	"auth-service/internal/domain"
	"auth-service/pkg/xerrors"
)

func (uc *AuthUsecase) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, xerrors.Wrap(xerrors.KindNotFound, "user not found", err)
		}
		return nil, xerrors.Wrap(xerrors.KindInternal, "load user", err)
	}
	return user.Profile(), nil
}

type UpdateProfileRequest struct {
	FirstName string
	LastName  string
}

// UpdateProfile mutates the target user's profile fields. Acting on another
// user's id is forbidden regardless of token validity.
func (uc *AuthUsecase) UpdateProfile(ctx context.Context, actorID, targetID string, req UpdateProfileRequest) (*domain.UserProfile, error) {
	if actorID != targetID {
		return nil, xerrors.New(xerrors.KindForbidden, "cannot modify another user's profile")
	}

	if err := uc.userRepo.UpdateProfile(ctx, targetID, req.FirstName, req.LastName); err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, xerrors.Wrap(xerrors.KindNotFound, "user not found", err)
		}
		return nil, xerrors.Wrap(xerrors.KindInternal, "update profile", err)
	}

	return uc.GetProfile(ctx, targetID)
}

// UpdatePreferredLoginMethod records which factor the client should offer
// first.
func (uc *AuthUsecase) UpdatePreferredLoginMethod(ctx context.Context, userID, method string) error {
	switch method {
	case domain.LoginMethodPassword, domain.LoginMethodOTP, domain.LoginMethodBiometric:
	default:
		return xerrors.New(xerrors.KindValidation, "unsupported login method")
	}

	if err := uc.userRepo.UpdatePreferredLoginMethod(ctx, userID, method); err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return xerrors.Wrap(xerrors.KindNotFound, "user not found", err)
		}
		return xerrors.Wrap(xerrors.KindInternal, "update login method", err)
	}
	return nil
}

// DeleteAccount purges the user and every owned record. Sessions die with the
// rows, but the event still tells live devices to drop their tokens.
func (uc *AuthUsecase) DeleteAccount(ctx context.Context, actorID, targetID string) error {
	if actorID != targetID {
		return xerrors.New(xerrors.KindForbidden, "cannot delete another user's account")
	}

	if err := uc.sessionRepo.RevokeAll(ctx, targetID, domain.RevokedReasonAccountDelete); err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "revoke sessions", err)
	}

	if err := uc.userRepo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return xerrors.Wrap(xerrors.KindNotFound, "user not found", err)
		}
		return xerrors.Wrap(xerrors.KindInternal, "delete account", err)
	}

	uc.publishEvent("account_deleted", targetID, nil)
	return nil
}
