package xerrors

import "errors"

// Kind buckets an error into the class the HTTP layer maps to a status code.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindConflict     Kind = "CONFLICT"
	KindNotFound     Kind = "NOT_FOUND"
	KindInternal     Kind = "INTERNAL"
)

// Codes for client branching inside the UNAUTHORIZED kind.
const (
	CodeTokenExpired      = "TOKEN_EXPIRED"
	CodeTokenInvalid      = "TOKEN_INVALID"
	CodeLoggedInElsewhere = "LOGGED_IN_ELSEWHERE"
)

// Error is a classified error. Code is optional and only set where clients
// need to branch (token rejection reasons).
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func NewCode(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind of err; bare errors default to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf extracts the branching code of err, empty when none was set.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
)

// Registration / Login
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrPhoneAlreadyInUse  = errors.New("phone already in use")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrInvalidPhoneFormat = errors.New("invalid phone format")
)

// Sessions / Tokens
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionRevoked      = errors.New("session revoked")
	ErrLoggedInElsewhere   = errors.New("logged in elsewhere")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrMfaSessionInvalid   = errors.New("invalid or expired mfa session")
	ErrMfaNotEnabled       = errors.New("mfa not enabled")
	ErrBiometricDisabled   = errors.New("biometric login not enabled")
	ErrBiometricMismatch   = errors.New("biometric token mismatch")
)

// OTP
var (
	ErrInvalidOTP          = errors.New("invalid otp")
	ErrExpiredOTP          = errors.New("expired otp")
	ErrOTPAttemptsExceeded = errors.New("otp attempts exceeded")
	ErrTooManyOTPRequests  = errors.New("too many otp requests")
	ErrInvalidChannel      = errors.New("invalid channel")
	ErrInvalidPurpose      = errors.New("invalid purpose")
)
