package usecase

import (
	"context"
	"time"

	"auth-service/internal/domain"
	"auth-service/pkg/cache"
	"auth-service/pkg/id"
	"auth-service/pkg/jwtutil"
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetMfaEnabled(ctx context.Context, userID string, enabled bool) error
	SetBiometricEnabled(ctx context.Context, userID string, enabled bool) error
	UpdateProfile(ctx context.Context, userID, firstName, lastName string) error
	UpdatePreferredLoginMethod(ctx context.Context, userID, method string) error
	Delete(ctx context.Context, userID string) error
}

type SessionRepo interface {
	Establish(ctx context.Context, s *domain.RefreshSession, supersedeReason string) error
	Get(ctx context.Context, sessionID string) (*domain.RefreshSession, error)
	Revoke(ctx context.Context, sessionID, reason string) error
	RevokeAll(ctx context.Context, userID, reason string) error
}

type BiometricRepo interface {
	Upsert(ctx context.Context, c *domain.BiometricCredential) error
	Get(ctx context.Context, userID string) (*domain.BiometricCredential, error)
	Delete(ctx context.Context, userID string) error
}

type OtpService interface {
	Send(ctx context.Context, channel, target, purpose string, userID *string) error
	Verify(ctx context.Context, channel, target, purpose, code string) error
}

// EventPublisher pushes session lifecycle events to connected devices so a
// superseded client learns immediately why its tokens stopped working.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, userID string, data interface{}) error
}

type AuthUsecase struct {
	userRepo      UserRepo
	sessionRepo   SessionRepo
	biometricRepo BiometricRepo
	otpSvc        OtpService
	cache         *cache.Cache
	sf            *id.Snowflake
	jwtGen        *jwtutil.Generator
	jwtVer        *jwtutil.Verifier
	events        EventPublisher

	accessTTL     time.Duration
	refreshTTL    time.Duration
	mfaSessionTTL time.Duration
}

func NewAuthUsecase(
	userRepo UserRepo,
	sessionRepo SessionRepo,
	biometricRepo BiometricRepo,
	otpSvc OtpService,
	cache *cache.Cache,
	sf *id.Snowflake,
	jwtGen *jwtutil.Generator,
	jwtVer *jwtutil.Verifier,
	events EventPublisher,
	accessTTL, refreshTTL, mfaSessionTTL time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:      userRepo,
		sessionRepo:   sessionRepo,
		biometricRepo: biometricRepo,
		otpSvc:        otpSvc,
		cache:         cache,
		sf:            sf,
		jwtGen:        jwtGen,
		jwtVer:        jwtVer,
		events:        events,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		mfaSessionTTL: mfaSessionTTL,
	}
}
