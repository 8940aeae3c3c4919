package handler

import (
	"net/http"

	"auth-service/internal/domain"
	"auth-service/pkg/response"
)

// POST /api/v1/auth/phone/send-otp
func (h *AuthHandler) SendPhoneOtp(w http.ResponseWriter, r *http.Request) {
	h.sendOtp(w, r, domain.ChannelPhone)
}

// POST /api/v1/auth/phone/verify-otp
func (h *AuthHandler) VerifyPhoneOtp(w http.ResponseWriter, r *http.Request) {
	h.verifyOtp(w, r, domain.ChannelPhone)
}

// POST /api/v1/auth/email/send-otp
func (h *AuthHandler) SendEmailOtp(w http.ResponseWriter, r *http.Request) {
	h.sendOtp(w, r, domain.ChannelEmail)
}

// POST /api/v1/auth/email/verify-otp
func (h *AuthHandler) VerifyEmailOtp(w http.ResponseWriter, r *http.Request) {
	h.verifyOtp(w, r, domain.ChannelEmail)
}

func (h *AuthHandler) sendOtp(w http.ResponseWriter, r *http.Request, channel string) {
	var req SendOtpRequest
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.uc.SendOtp(r.Context(), channel, req.Target, req.Purpose); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "code sent"})
}

func (h *AuthHandler) verifyOtp(w http.ResponseWriter, r *http.Request, channel string) {
	var req VerifyOtpRequest
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.uc.VerifyOtp(r.Context(), channel, req.Target, req.Purpose, req.Code); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "code verified"})
}
