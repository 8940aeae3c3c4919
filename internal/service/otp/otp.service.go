package otp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"auth-service/internal/domain"
	"auth-service/internal/notifier"
	"auth-service/internal/rate"
	"auth-service/pkg/cache"
	"auth-service/pkg/id"
	"auth-service/pkg/utils"
	"auth-service/pkg/xerrors"

	"github.com/redis/go-redis/v9"
)

const CodeDigits = 6

// AuditRepo records issued challenges; the live code itself only ever lives
// in redis.
type AuditRepo interface {
	Create(ctx context.Context, a *domain.OtpAudit) error
	MarkVerified(ctx context.Context, channel, target, purpose string) error
}

// Service generates, delivers and verifies one-time codes. One live challenge
// exists per (channel, target, purpose); issuing a new one overwrites the old,
// including for in-flight verification attempts.
type Service struct {
	cache       *cache.Cache
	limiter     *rate.Limiter
	audit       AuditRepo
	sf          *id.Snowflake
	emailSender notifier.Sender
	smsSender   notifier.Sender
	ttl         time.Duration
	maxAttempts int
}

func NewService(
	cache *cache.Cache,
	limiter *rate.Limiter,
	audit AuditRepo,
	sf *id.Snowflake,
	emailSender notifier.Sender,
	smsSender notifier.Sender,
	ttl time.Duration,
	maxAttempts int,
) *Service {
	return &Service{
		cache:       cache,
		limiter:     limiter,
		audit:       audit,
		sf:          sf,
		emailSender: emailSender,
		smsSender:   smsSender,
		ttl:         ttl,
		maxAttempts: maxAttempts,
	}
}

func challengeKey(channel, target, purpose string) string {
	return fmt.Sprintf("%s:%s:%s", channel, target, purpose)
}

// Send issues a fresh challenge and dispatches it over the channel. Delivery
// runs in the background; its failure is logged, never surfaced to the caller.
func (s *Service) Send(ctx context.Context, channel, target, purpose string, userID *string) error {
	if !domain.ValidChannel(channel) {
		return xerrors.Wrap(xerrors.KindValidation, "unsupported channel", xerrors.ErrInvalidChannel)
	}
	if !domain.ValidPurpose(purpose) {
		return xerrors.Wrap(xerrors.KindValidation, "unsupported purpose", xerrors.ErrInvalidPurpose)
	}

	if err := s.limiter.CanRequest(ctx, target, "otp:"+purpose); err != nil {
		return err
	}

	code := randomCode(CodeDigits)
	now := time.Now()

	challenge := &domain.OtpChallenge{
		CodeHash:  utils.HashToken(code),
		Channel:   channel,
		Target:    target,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	raw, err := json.Marshal(challenge)
	if err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "encode challenge", err)
	}

	key := challengeKey(channel, target, purpose)

	// Overwriting the key is what invalidates any prior code for this tuple.
	if err := s.cache.Set(ctx, "otp", key, raw, s.ttl); err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "store challenge", err)
	}
	// Fresh challenge, fresh attempt budget.
	if err := s.cache.Delete(ctx, "otp_attempts", key); err != nil {
		log.Printf("[WARN] failed to reset otp attempts | key=%s err=%v", key, err)
	}

	auditID := s.sf.Generate()
	go func() {
		a := &domain.OtpAudit{
			ID:         auditID,
			UserID:     userID,
			Channel:    channel,
			Target:     target,
			Purpose:    purpose,
			IssuedAt:   now,
			ValidUntil: now.Add(s.ttl),
		}
		if err := s.audit.Create(context.Background(), a); err != nil {
			log.Printf("Failed to insert OTP audit row: %v", err)
		}
	}()

	s.dispatch(channel, target, purpose, code)
	return nil
}

func (s *Service) dispatch(channel, target, purpose, code string) {
	body := fmt.Sprintf(
		"Your code for %s is %s. It is valid for %d minutes.",
		formatPurpose(purpose), code, int(s.ttl.Minutes()),
	)
	subject := "Your verification code"

	sender := s.smsSender
	if channel == domain.ChannelEmail {
		sender = s.emailSender
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := sender.Send(bgCtx, target, subject, body); err != nil {
			log.Printf("[WARN] failed to deliver OTP via %s to %s: %v", channel, target, err)
		}
	}()
}

// Verify checks code against the live challenge for the tuple. Wrong-shape
// codes are rejected before any lookup. A consumed or exhausted challenge
// stays failed until a new code is requested.
func (s *Service) Verify(ctx context.Context, channel, target, purpose, code string) error {
	if !utils.ValidateOTPCode(code) {
		return xerrors.New(xerrors.KindValidation, fmt.Sprintf("code must be %d digits", CodeDigits))
	}

	key := challengeKey(channel, target, purpose)

	raw, err := s.cache.Get(ctx, "otp", key)
	if err == redis.Nil {
		// Expired, consumed, or never issued.
		return xerrors.Wrap(xerrors.KindUnauthorized, "invalid or expired code", xerrors.ErrInvalidOTP)
	}
	if err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "load challenge", err)
	}

	var challenge domain.OtpChallenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		return xerrors.Wrap(xerrors.KindInternal, "decode challenge", err)
	}

	if time.Now().After(challenge.ExpiresAt) {
		_ = s.cache.Delete(ctx, "otp", key)
		return xerrors.Wrap(xerrors.KindUnauthorized, "invalid or expired code", xerrors.ErrExpiredOTP)
	}

	attempts := s.currentAttempts(ctx, key)
	if attempts >= s.maxAttempts {
		// Exhausted challenges fail even when the final code is correct.
		return xerrors.Wrap(xerrors.KindUnauthorized, "too many incorrect attempts", xerrors.ErrOTPAttemptsExceeded)
	}

	if !utils.TokenHashEquals(code, challenge.CodeHash) {
		if _, err := s.cache.IncrWithExpire(ctx, "otp_attempts", key, s.ttl); err != nil {
			log.Printf("[WARN] failed to record otp attempt | key=%s err=%v", key, err)
		}
		return xerrors.Wrap(xerrors.KindUnauthorized, "invalid or expired code", xerrors.ErrInvalidOTP)
	}

	// Consume: a code verifies exactly once.
	_ = s.cache.Delete(ctx, "otp", key)
	_ = s.cache.Delete(ctx, "otp_attempts", key)

	go func() {
		if err := s.audit.MarkVerified(context.Background(), channel, target, purpose); err != nil {
			log.Printf("DB OTP verify update failed: %v", err)
		}
	}()

	return nil
}

func (s *Service) currentAttempts(ctx context.Context, key string) int {
	val, err := s.cache.Get(ctx, "otp_attempts", key)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return n
}
