package handler

import (
	"net/http"

	"auth-service/internal/middleware"
	"auth-service/internal/usecase"
	"auth-service/pkg/response"
)

// Signup creates an account and signs the new user in.
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.uc.Signup(r.Context(), usecase.SignupRequest{
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"user":          result.User,
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
	})
}

// Signin returns tokens, or an mfa challenge when the account requires one.
// POST /api/v1/auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.uc.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if result.MfaRequired {
		response.JSON(w, http.StatusOK, map[string]interface{}{
			"mfa_required":      true,
			"mfa_session_token": result.MfaSessionToken,
			"user":              result.User,
		})
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"user":          result.User,
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
	})
}

// RefreshToken rotates a refresh token for a new pair.
// POST /api/v1/auth/refresh-token
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.RefreshToken == "" {
		response.Error(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	pair, err := h.uc.RotateTokens(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// AuthStatus confirms the bearer token is still live.
// GET /api/v1/auth/status
func (h *AuthHandler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"auth_status": "authenticated",
		"user_id":     userID,
	})
}

// Logout revokes the current session; subsequent status calls 401.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.uc.Logout(r.Context(), claims); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
