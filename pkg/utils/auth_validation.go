package utils

import (
	"errors"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	e164Regex  = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)
	otpRegex   = regexp.MustCompile(`^\d{6}$`)

	upperRegex   = regexp.MustCompile(`[A-Z]`)
	lowerRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex   = regexp.MustCompile(`[0-9]`)
	specialRegex = regexp.MustCompile(`[!@#\$%\^&\*\(\)_\+\-=\[\]\{\}\\|;:'",.<>\/?]`)
)

// NormalizeEmail lower-cases and trims an email. Every lookup and uniqueness
// check goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) bool {
	if strings.TrimSpace(email) == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// ValidatePhone checks E.164 format.
func ValidatePhone(phone string) bool {
	return e164Regex.MatchString(strings.TrimSpace(phone))
}

// ValidateOTPCode checks the fixed 6-digit code shape.
func ValidateOTPCode(code string) bool {
	return otpRegex.MatchString(code)
}

func ValidatePassword(password string) (bool, error) {
	if len(password) < 8 {
		return false, errors.New("password must be at least 8 characters long")
	}
	if len(password) > 100 {
		return false, errors.New("password must not exceed 100 characters")
	}
	if !upperRegex.MatchString(password) {
		return false, errors.New("password must include at least one uppercase letter")
	}
	if !lowerRegex.MatchString(password) {
		return false, errors.New("password must include at least one lowercase letter")
	}
	if !digitRegex.MatchString(password) {
		return false, errors.New("password must include at least one digit")
	}
	if !specialRegex.MatchString(password) {
		return false, errors.New("password must include at least one special character")
	}
	return true, nil
}
