package handler

import (
	"net/http"

	"auth-service/pkg/response"
)

// SetupMfa with no code sends the enrollment challenge; with a code it
// verifies and enables MFA.
// POST /api/v1/auth/mfa/setup
func (h *AuthHandler) SetupMfa(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SetupMfaRequest
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	enabled, err := h.uc.SetupMfa(r.Context(), userID, req.Method, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	if enabled {
		response.JSON(w, http.StatusOK, map[string]interface{}{
			"message":     "mfa enabled",
			"mfa_enabled": true,
		})
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message":     "code sent",
		"mfa_enabled": false,
	})
}

// POST /api/v1/auth/mfa/disable
func (h *AuthHandler) DisableMfa(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.uc.DisableMfa(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "mfa disabled"})
}

// SendMfaCode re-issues the signin challenge for a pending mfa session.
// POST /api/v1/auth/mfa/send-code
func (h *AuthHandler) SendMfaCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		SendMfaCodeRequest
	}
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.UserID == "" {
		response.Error(w, http.StatusBadRequest, "user id is required")
		return
	}

	if err := h.uc.SendMfaCode(r.Context(), req.UserID, req.Method); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "code sent"})
}

// VerifyMfaLogin consumes the mfa session and mints the real token pair.
// POST /api/v1/auth/mfa/verify-login
func (h *AuthHandler) VerifyMfaLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		VerifyMfaLoginRequest
	}
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	pair, err := h.uc.VerifyMfaLogin(r.Context(), req.UserID, req.MfaSessionToken, req.Code, req.Method)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}
