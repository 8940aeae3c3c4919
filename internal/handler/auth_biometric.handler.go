package handler

import (
	"net/http"

	"auth-service/pkg/response"
)

// EnableBiometric returns the opaque device token exactly once.
// POST /api/v1/auth/biometric/enable
func (h *AuthHandler) EnableBiometric(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, err := h.uc.EnableBiometric(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"biometric_token": token})
}

// POST /api/v1/auth/biometric/disable
func (h *AuthHandler) DisableBiometric(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.uc.DisableBiometric(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "biometric disabled"})
}

// BiometricLogin is unauthenticated: the device token is the credential.
// POST /api/v1/auth/biometric/login
func (h *AuthHandler) BiometricLogin(w http.ResponseWriter, r *http.Request) {
	var req BiometricLoginRequest
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	pair, err := h.uc.BiometricLogin(r.Context(), req.UserID, req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}
