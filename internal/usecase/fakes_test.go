package usecase

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"sync"
	"testing"
	"time"

	"auth-service/internal/domain"
	"auth-service/pkg/cache"
	"auth-service/pkg/id"
	"auth-service/pkg/jwtutil"
	"auth-service/pkg/xerrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return xerrors.New(xerrors.KindConflict, "email already registered")
		}
		if existing.Phone == u.Phone {
			return xerrors.New(xerrors.KindConflict, "phone already registered")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) mutate(userID string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return r.mutate(userID, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (r *fakeUserRepo) SetMfaEnabled(ctx context.Context, userID string, enabled bool) error {
	return r.mutate(userID, func(u *domain.User) { u.MfaEnabled = enabled })
}

func (r *fakeUserRepo) SetBiometricEnabled(ctx context.Context, userID string, enabled bool) error {
	return r.mutate(userID, func(u *domain.User) { u.BiometricEnabled = enabled })
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, userID, firstName, lastName string) error {
	return r.mutate(userID, func(u *domain.User) {
		u.FirstName = firstName
		u.LastName = lastName
	})
}

func (r *fakeUserRepo) UpdatePreferredLoginMethod(ctx context.Context, userID, method string) error {
	return r.mutate(userID, func(u *domain.User) { u.PreferredLoginMethod = method })
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return xerrors.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.RefreshSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.RefreshSession{}}
}

func (r *fakeSessionRepo) Establish(ctx context.Context, s *domain.RefreshSession, supersedeReason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, existing := range r.sessions {
		if existing.UserID == s.UserID && !existing.Revoked {
			existing.Revoked = true
			existing.RevokedReason = supersedeReason
			existing.RevokedAt = &now
		}
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *fakeSessionRepo) Get(ctx context.Context, sessionID string) (*domain.RefreshSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, xerrors.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Revoke(ctx context.Context, sessionID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok || s.Revoked {
		return xerrors.ErrSessionNotFound
	}
	now := time.Now()
	s.Revoked = true
	s.RevokedReason = reason
	s.RevokedAt = &now
	return nil
}

func (r *fakeSessionRepo) RevokeAll(ctx context.Context, userID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, s := range r.sessions {
		if s.UserID == userID && !s.Revoked {
			s.Revoked = true
			s.RevokedReason = reason
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeSessionRepo) liveCount(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.UserID == userID && !s.Revoked {
			n++
		}
	}
	return n
}

type fakeBiometricRepo struct {
	mu    sync.Mutex
	creds map[string]*domain.BiometricCredential
}

func newFakeBiometricRepo() *fakeBiometricRepo {
	return &fakeBiometricRepo{creds: map[string]*domain.BiometricCredential{}}
}

func (r *fakeBiometricRepo) Upsert(ctx context.Context, c *domain.BiometricCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.creds[c.UserID] = &cp
	return nil
}

func (r *fakeBiometricRepo) Get(ctx context.Context, userID string) (*domain.BiometricCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.creds[userID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeBiometricRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.creds, userID)
	return nil
}

// fakeOtpService keeps the last issued code per tuple and consumes on match,
// mirroring the real service's contract.
type fakeOtpService struct {
	mu      sync.Mutex
	codes   map[string]string
	seq     int
	sent    []string // tuples, in issue order
	sendErr error    // when set, Send fails without issuing
}

func newFakeOtpService() *fakeOtpService {
	return &fakeOtpService{codes: map[string]string{}}
}

func otpTuple(channel, target, purpose string) string {
	return fmt.Sprintf("%s:%s:%s", channel, target, purpose)
}

func (f *fakeOtpService) Send(ctx context.Context, channel, target, purpose string, userID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.seq++
	key := otpTuple(channel, target, purpose)
	f.codes[key] = fmt.Sprintf("%06d", f.seq)
	f.sent = append(f.sent, key)
	return nil
}

func (f *fakeOtpService) Verify(ctx context.Context, channel, target, purpose, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := otpTuple(channel, target, purpose)
	want, ok := f.codes[key]
	if !ok || want != code {
		return xerrors.Wrap(xerrors.KindUnauthorized, "invalid or expired code", xerrors.ErrInvalidOTP)
	}
	delete(f.codes, key)
	return nil
}

func (f *fakeOtpService) lastCode(channel, target, purpose string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[otpTuple(channel, target, purpose)]
}

type authFixture struct {
	uc        *AuthUsecase
	users     *fakeUserRepo
	sessions  *fakeSessionRepo
	biometric *fakeBiometricRepo
	otp       *fakeOtpService
	mr        *miniredis.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sf, err := id.NewSnowflake(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	biometric := newFakeBiometricRepo()
	otpSvc := newFakeOtpService()

	uc := NewAuthUsecase(
		users,
		sessions,
		biometric,
		otpSvc,
		cache.NewCacheWithClient(rdb),
		sf,
		jwtutil.NewGenerator(priv, "auth-service", "auth-clients"),
		jwtutil.NewVerifier(&priv.PublicKey, "auth-service", "auth-clients"),
		nil,
		15*time.Minute,
		time.Hour,
		10*time.Minute,
	)

	return &authFixture{uc: uc, users: users, sessions: sessions, biometric: biometric, otp: otpSvc, mr: mr}
}

func (f *authFixture) signup(t *testing.T, email, phone string) *SigninResult {
	t.Helper()
	res, err := f.uc.Signup(context.Background(), SignupRequest{
		Email:     email,
		Phone:     phone,
		Password:  "Str0ng!pass",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return res
}
