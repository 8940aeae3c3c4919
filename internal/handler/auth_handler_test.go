package handler_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"auth-service/internal/domain"
	"auth-service/internal/handler"
	"auth-service/internal/middleware"
	"auth-service/internal/router"
	"auth-service/internal/usecase"
	"auth-service/internal/ws"
	"auth-service/pkg/cache"
	"auth-service/pkg/id"
	"auth-service/pkg/jwtutil"
	"auth-service/pkg/xerrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
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

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
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

func (r *memUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
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

func (r *memUserRepo) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) mutate(userID string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, userID, hash string) error {
	return r.mutate(userID, func(u *domain.User) { u.PasswordHash = hash })
}

func (r *memUserRepo) SetMfaEnabled(ctx context.Context, userID string, enabled bool) error {
	return r.mutate(userID, func(u *domain.User) { u.MfaEnabled = enabled })
}

func (r *memUserRepo) SetBiometricEnabled(ctx context.Context, userID string, enabled bool) error {
	return r.mutate(userID, func(u *domain.User) { u.BiometricEnabled = enabled })
}

func (r *memUserRepo) UpdateProfile(ctx context.Context, userID, firstName, lastName string) error {
	return r.mutate(userID, func(u *domain.User) {
		u.FirstName = firstName
		u.LastName = lastName
	})
}

func (r *memUserRepo) UpdatePreferredLoginMethod(ctx context.Context, userID, method string) error {
	return r.mutate(userID, func(u *domain.User) { u.PreferredLoginMethod = method })
}

func (r *memUserRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return xerrors.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.RefreshSession
}

func (r *memSessionRepo) Establish(ctx context.Context, s *domain.RefreshSession, supersedeReason string) error {
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

func (r *memSessionRepo) Get(ctx context.Context, sessionID string) (*domain.RefreshSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, xerrors.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) Revoke(ctx context.Context, sessionID, reason string) error {
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

func (r *memSessionRepo) RevokeAll(ctx context.Context, userID, reason string) error {
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

type memBiometricRepo struct {
	mu    sync.Mutex
	creds map[string]*domain.BiometricCredential
}

func (r *memBiometricRepo) Upsert(ctx context.Context, c *domain.BiometricCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.creds[c.UserID] = &cp
	return nil
}

func (r *memBiometricRepo) Get(ctx context.Context, userID string) (*domain.BiometricCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.creds[userID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memBiometricRepo) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.creds, userID)
	return nil
}

// memOtpService hands out sequential codes so tests can read them back.
type memOtpService struct {
	mu    sync.Mutex
	codes map[string]string
	seq   int
}

func (f *memOtpService) key(channel, target, purpose string) string {
	return fmt.Sprintf("%s:%s:%s", channel, target, purpose)
}

func (f *memOtpService) Send(ctx context.Context, channel, target, purpose string, userID *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.codes[f.key(channel, target, purpose)] = fmt.Sprintf("%06d", f.seq)
	return nil
}

func (f *memOtpService) Verify(ctx context.Context, channel, target, purpose, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(channel, target, purpose)
	if f.codes[k] != code || code == "" {
		return xerrors.Wrap(xerrors.KindUnauthorized, "invalid or expired code", xerrors.ErrInvalidOTP)
	}
	delete(f.codes, k)
	return nil
}

func (f *memOtpService) lastCode(channel, target, purpose string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[f.key(channel, target, purpose)]
}

type apiEnv struct {
	mux *chi.Mux
	otp *memOtpService
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	sf, err := id.NewSnowflake(2)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	otpSvc := &memOtpService{codes: map[string]string{}}

	uc := usecase.NewAuthUsecase(
		&memUserRepo{users: map[string]*domain.User{}},
		&memSessionRepo{sessions: map[string]*domain.RefreshSession{}},
		&memBiometricRepo{creds: map[string]*domain.BiometricCredential{}},
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

	auth := middleware.NewAuthMiddleware(uc)
	h := handler.NewAuthHandler(uc, ws.NewHub())

	mux := chi.NewRouter()
	router.SetupRoutes(mux, h, auth, rdb)

	return &apiEnv{mux: mux, otp: otpSvc}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func (e *apiEnv) do(t *testing.T, method, path, bearer string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

type tokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (e *apiEnv) signup(t *testing.T, email, phone string) tokenData {
	t.Helper()
	rec, env := e.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":      email,
		"phone":      phone,
		"password":   "Str0ng!pass",
		"first_name": "Ada",
		"last_name":  "Lovelace",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status %d: %s", rec.Code, rec.Body.String())
	}
	var td tokenData
	if err := json.Unmarshal(env.Data, &td); err != nil {
		t.Fatalf("decode signup data: %v", err)
	}
	return td
}

func TestHealthEndpoint(t *testing.T) {
	e := newAPI(t)
	rec, _ := e.do(t, http.MethodGet, "/api/v1/auth/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestSignupEndpoint(t *testing.T) {
	e := newAPI(t)

	td := e.signup(t, "ada@example.com", "+254712345678")
	if td.AccessToken == "" || td.RefreshToken == "" || td.User.ID == "" {
		t.Fatalf("incomplete signup payload: %+v", td)
	}

	rec, _ := e.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email": "broken",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid signup: expected 400, got %d", rec.Code)
	}

	rec, _ = e.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":    "ada@example.com",
		"phone":    "+254712345600",
		"password": "Str0ng!pass",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup: expected 409, got %d", rec.Code)
	}
}

func TestSigninEndpoint(t *testing.T) {
	e := newAPI(t)
	e.signup(t, "ada@example.com", "+254712345678")

	rec, _ := e.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "ada@example.com",
		"password": "Str0ng!pass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signin: expected 200, got %d", rec.Code)
	}

	rec, _ = e.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "ada@example.com",
		"password": "Wr0ng!pass",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rec.Code)
	}
}

func TestAuthStatusRequiresBearer(t *testing.T) {
	e := newAPI(t)
	td := e.signup(t, "ada@example.com", "+254712345678")

	rec, _ := e.do(t, http.MethodGet, "/api/v1/auth/status", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no header: expected 401, got %d", rec.Code)
	}

	rec, env := e.do(t, http.MethodGet, "/api/v1/auth/status", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized || env.Code != xerrors.CodeTokenInvalid {
		t.Errorf("garbage token: expected 401 TOKEN_INVALID, got %d %q", rec.Code, env.Code)
	}

	rec, _ = e.do(t, http.MethodGet, "/api/v1/auth/status", td.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("live token: expected 200, got %d", rec.Code)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	e := newAPI(t)
	td := e.signup(t, "ada@example.com", "+254712345678")

	rec, _ := e.do(t, http.MethodPost, "/api/v1/auth/logout", td.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}

	rec, env := e.do(t, http.MethodGet, "/api/v1/auth/status", td.AccessToken, nil)
	if rec.Code != http.StatusUnauthorized || env.Code != xerrors.CodeTokenInvalid {
		t.Fatalf("post-logout: expected 401 TOKEN_INVALID, got %d %q", rec.Code, env.Code)
	}
}

func TestLoggedInElsewhereSurfacesOn401(t *testing.T) {
	e := newAPI(t)
	first := e.signup(t, "ada@example.com", "+254712345678")

	rec, _ := e.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "ada@example.com",
		"password": "Str0ng!pass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("second signin: %d", rec.Code)
	}

	rec, env := e.do(t, http.MethodGet, "/api/v1/auth/status", first.AccessToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if env.Code != xerrors.CodeLoggedInElsewhere {
		t.Fatalf("expected LOGGED_IN_ELSEWHERE, got %q", env.Code)
	}
}

func TestRefreshTokenEndpoint(t *testing.T) {
	e := newAPI(t)
	td := e.signup(t, "ada@example.com", "+254712345678")

	rec, env := e.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refresh_token": td.RefreshToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", rec.Code)
	}
	var pair tokenData
	if err := json.Unmarshal(env.Data, &pair); err != nil || pair.AccessToken == "" {
		t.Fatalf("bad refresh payload: %v %s", err, env.Data)
	}

	rec, _ = e.do(t, http.MethodPost, "/api/v1/auth/refresh-token", "", map[string]string{
		"refresh_token": "",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty refresh token: expected 400, got %d", rec.Code)
	}
}

func TestUpdateProfileForeignIDReturns403(t *testing.T) {
	e := newAPI(t)
	ada := e.signup(t, "ada@example.com", "+254712345678")
	eve := e.signup(t, "eve@example.com", "+254712345600")

	rec, _ := e.do(t, http.MethodPut, "/api/v1/auth/update-profile/"+eve.User.ID, ada.AccessToken, map[string]string{
		"first_name": "Mallory",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCheckEmailEndpoint(t *testing.T) {
	e := newAPI(t)
	e.signup(t, "ada@example.com", "+254712345678")

	rec, env := e.do(t, http.MethodPost, "/api/v1/auth/check-email", "", map[string]string{
		"email": "ada@example.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var data struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || !data.Exists {
		t.Fatalf("expected exists=true, got %s", env.Data)
	}
}

func TestOtpEndpoints(t *testing.T) {
	e := newAPI(t)
	e.signup(t, "ada@example.com", "+254712345678")

	rec, _ := e.do(t, http.MethodPost, "/api/v1/auth/phone/send-otp", "", map[string]string{
		"target":  "+254712345678",
		"purpose": domain.PurposeSignin,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("send otp: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	code := e.otp.lastCode(domain.ChannelPhone, "+254712345678", domain.PurposeSignin)
	rec, _ = e.do(t, http.MethodPost, "/api/v1/auth/phone/verify-otp", "", map[string]string{
		"target":  "+254712345678",
		"purpose": domain.PurposeSignin,
		"code":    code,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify otp: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Verification purpose for a registered identity conflicts.
	rec, _ = e.do(t, http.MethodPost, "/api/v1/auth/email/send-otp", "", map[string]string{
		"target":  "ada@example.com",
		"purpose": domain.PurposeVerification,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestMfaEndpointsRequireAuth(t *testing.T) {
	e := newAPI(t)

	rec, _ := e.do(t, http.MethodPost, "/api/v1/auth/mfa/setup", "", map[string]string{"method": "sms"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec, _ = e.do(t, http.MethodPost, "/api/v1/auth/biometric/enable", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
