package usecase

import (
	"context"
	"errors"
	"time"

	"auth-service/internal/domain"
	"auth-service/pkg/id"
	"auth-service/pkg/utils"
	"auth-service/pkg/xerrors"
)

type SignupRequest struct {
	Email     string
	Phone     string
	Password  string
	FirstName string
	LastName  string
}

// SigninResult is one of two disjoint outcomes: tokens for a completed
// authentication, or an mfa challenge handle. Never both.
type SigninResult struct {
	MfaRequired     bool
	MfaSessionToken string
	Tokens          *domain.TokenPair
	User            *domain.UserProfile
}

// Signup validates shape and policy, creates the user and signs them in.
// All input rejection happens before any persistence.
func (uc *AuthUsecase) Signup(ctx context.Context, req SignupRequest) (*SigninResult, error) {
	if req.Email == "" || req.Phone == "" || req.Password == "" {
		return nil, xerrors.New(xerrors.KindValidation, "email, phone and password are required")
	}
	if !utils.ValidateEmail(req.Email) {
		return nil, xerrors.Wrap(xerrors.KindValidation, "invalid email format", xerrors.ErrInvalidEmailFormat)
	}
	if !utils.ValidatePhone(req.Phone) {
		return nil, xerrors.Wrap(xerrors.KindValidation, "invalid phone format", xerrors.ErrInvalidPhoneFormat)
	}
	if ok, err := utils.ValidatePassword(req.Password); !ok {
		return nil, xerrors.New(xerrors.KindValidation, err.Error())
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindInternal, "hash password", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:                   uc.sf.Generate(),
		Email:                utils.NormalizeEmail(req.Email),
		Phone:                req.Phone,
		PasswordHash:         hashed,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		PreferredLoginMethod: domain.LoginMethodPassword,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := uc.EstablishSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &SigninResult{Tokens: tokens, User: user.Profile()}, nil
}

// Signin verifies credentials. When MFA is enabled the credential check still
// runs but no tokens are issued; the caller gets an mfa session token instead.
func (uc *AuthUsecase) Signin(ctx context.Context, email, password string) (*SigninResult, error) {
	if email == "" || password == "" {
		return nil, xerrors.New(xerrors.KindValidation, "email and password are required")
	}

	user, err := uc.userRepo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, xerrors.Wrap(xerrors.KindUnauthorized, "invalid credentials", xerrors.ErrInvalidCredentials)
		}
		return nil, xerrors.Wrap(xerrors.KindInternal, "lookup user", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, xerrors.Wrap(xerrors.KindUnauthorized, "invalid credentials", xerrors.ErrInvalidCredentials)
	}

	if user.MfaEnabled {
		// The second-factor code goes out as part of signin so the client
		// only has to present it, not request it.
		if err := uc.otpSvc.Send(ctx, domain.ChannelPhone, user.Phone, domain.PurposeMfa, &user.ID); err != nil {
			return nil, err
		}
		mfaToken, err := uc.createMfaSession(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &SigninResult{MfaRequired: true, MfaSessionToken: mfaToken, User: user.Profile()}, nil
	}

	tokens, err := uc.EstablishSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &SigninResult{Tokens: tokens, User: user.Profile()}, nil
}

// createMfaSession binds a password-verified signin to a pending second-factor
// challenge. The handle is single-use and short-lived.
func (uc *AuthUsecase) createMfaSession(ctx context.Context, userID string) (string, error) {
	token := id.GenerateUUID("mfa")
	if err := uc.cache.Set(ctx, "mfa_session", token, userID, uc.mfaSessionTTL); err != nil {
		return "", xerrors.Wrap(xerrors.KindInternal, "store mfa session", err)
	}
	return token, nil
}

// CheckEmail reports whether an account exists for the address.
func (uc *AuthUsecase) CheckEmail(ctx context.Context, email string) (bool, error) {
	if !utils.ValidateEmail(email) {
		return false, xerrors.Wrap(xerrors.KindValidation, "invalid email format", xerrors.ErrInvalidEmailFormat)
	}

	_, err := uc.userRepo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return false, nil
		}
		return false, xerrors.Wrap(xerrors.KindInternal, "lookup user", err)
	}
	return true, nil
}
