package handler

import (
	"net/http"

	"auth-service/internal/usecase"
	"auth-service/internal/ws"
	"auth-service/pkg/response"
)

type AuthHandler struct {
	uc  *usecase.AuthUsecase
	hub *ws.Hub
}

func NewAuthHandler(uc *usecase.AuthUsecase, hub *ws.Hub) *AuthHandler {
	return &AuthHandler{uc: uc, hub: hub}
}

func (h *AuthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CheckEmail reports whether an account exists for the address.
// POST /api/v1/auth/check-email
func (h *AuthHandler) CheckEmail(w http.ResponseWriter, r *http.Request) {
	var req CheckEmailRequest
	if err := decodeRequestBody(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	exists, err := h.uc.CheckEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"exists": exists})
}
