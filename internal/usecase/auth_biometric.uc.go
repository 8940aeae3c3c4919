package usecase

import (
	"context"
	"errors"

	"auth-service/internal/domain"
	"auth-service/pkg/utils"
	"auth-service/pkg/xerrors"
)

// EnableBiometric mints a fresh opaque device credential, replacing any prior
// one, and returns the plaintext exactly once.
func (uc *AuthUsecase) EnableBiometric(ctx context.Context, userID string) (string, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return "", xerrors.Wrap(xerrors.KindNotFound, "user not found", err)
	}

	token, err := utils.GenerateToken()
	if err != nil {
		return "", xerrors.Wrap(xerrors.KindInternal, "generate biometric token", err)
	}

	cred := &domain.BiometricCredential{
		UserID:    userID,
		TokenHash: utils.HashToken(token),
		Enabled:   true,
	}
	if err := uc.biometricRepo.Upsert(ctx, cred); err != nil {
		return "", xerrors.Wrap(xerrors.KindInternal, "store biometric credential", err)
	}
	if err := uc.userRepo.SetBiometricEnabled(ctx, userID, true); err != nil {
		return "", xerrors.Wrap(xerrors.KindInternal, "enable biometric flag", err)
	}

	return token, nil
}

// BiometricLogin authenticates with the device credential and establishes a
// session like any other signin.
func (uc *AuthUsecase) BiometricLogin(ctx context.Context, userID, token string) (*domain.TokenPair, error) {
	if userID == "" || token == "" {
		return nil, xerrors.New(xerrors.KindValidation, "user id and biometric token are required")
	}

	cred, err := uc.biometricRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.Wrap(xerrors.KindUnauthorized, "biometric login not enabled", xerrors.ErrBiometricDisabled)
		}
		return nil, xerrors.Wrap(xerrors.KindInternal, "load biometric credential", err)
	}
	if !cred.Enabled {
		return nil, xerrors.Wrap(xerrors.KindUnauthorized, "biometric login not enabled", xerrors.ErrBiometricDisabled)
	}

	if !utils.TokenHashEquals(token, cred.TokenHash) {
		return nil, xerrors.Wrap(xerrors.KindUnauthorized, "biometric token mismatch", xerrors.ErrBiometricMismatch)
	}

	return uc.EstablishSession(ctx, userID)
}

// DisableBiometric clears the credential; any outstanding token is
// permanently invalid.
func (uc *AuthUsecase) DisableBiometric(ctx context.Context, userID string) error {
	if err := uc.biometricRepo.Delete(ctx, userID); err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "delete biometric credential", err)
	}
	if err := uc.userRepo.SetBiometricEnabled(ctx, userID, false); err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return xerrors.Wrap(xerrors.KindNotFound, "user not found", err)
		}
		return xerrors.Wrap(xerrors.KindInternal, "disable biometric flag", err)
	}
	return nil
}
