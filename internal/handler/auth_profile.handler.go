package handler

import (
	"net/http"

	"auth-service/internal/usecase"
	"auth-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

// GET /api/v1/auth/profile
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.uc.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile only ever acts on the caller's own id; a foreign id in
// the path is forbidden.
// PUT /api/v1/auth/update-profile/{id}
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")

	var req UpdateProfileRequest
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	profile, err := h.uc.UpdateProfile(r.Context(), userID, targetID, usecase.UpdateProfileRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, profile)
}

// POST /api/v1/auth/preferences/login-method
func (h *AuthHandler) HandleUpdateLoginPreference(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req UpdateLoginPreferenceRequest
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.uc.UpdatePreferredLoginMethod(r.Context(), userID, req.Method); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "preference updated"})
}

// DELETE /api/v1/auth/account/{id}
func (h *AuthHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")

	if err := h.uc.DeleteAccount(r.Context(), userID, targetID); err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
