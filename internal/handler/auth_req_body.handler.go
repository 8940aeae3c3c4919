package handler

type CheckEmailRequest struct {
	Email string `json:"email"`
}

type SignupRequest struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SendOtpRequest struct {
	Target  string `json:"target"`
	Purpose string `json:"purpose"`
}

type VerifyOtpRequest struct {
	Target  string `json:"target"`
	Purpose string `json:"purpose"`
	Code    string `json:"code"`
}

type SetupMfaRequest struct {
	Method string `json:"method"`
	Code   string `json:"code"`
}

type SendMfaCodeRequest struct {
	Method string `json:"method"`
}

type VerifyMfaLoginRequest struct {
	MfaSessionToken string `json:"mfa_session_token"`
	Code            string `json:"code"`
	Method          string `json:"method"`
}

type BiometricLoginRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"biometric_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UpdateLoginPreferenceRequest struct {
	Method string `json:"method"`
}
