package handler

import (
	"net/http"

	"auth-service/pkg/response"
)

// HandleWS upgrades an authenticated connection for session event pushes.
// GET /api/v1/auth/ws
func (h *AuthHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserFromContext(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.hub.ServeWS(w, r, userID)
}
