package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"auth-service/internal/middleware"
	"auth-service/internal/rate"
	"auth-service/pkg/response"
	"auth-service/pkg/xerrors"
)

func decodeRequestBody(r *http.Request, target interface{}) error {
	return json.NewDecoder(r.Body).Decode(target)
}

func getUserFromContext(r *http.Request) (string, bool) {
	return middleware.UserIDFromContext(r.Context())
}

// writeError maps the error taxonomy onto HTTP statuses. Internal failures
// are logged with detail but surfaced generically.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, rate.ErrBlocked) || errors.Is(err, rate.ErrTooSoon) {
		response.Error(w, http.StatusTooManyRequests, err.Error())
		return
	}

	kind := xerrors.KindOf(err)
	code := xerrors.CodeOf(err)

	switch kind {
	case xerrors.KindValidation:
		response.ErrorCode(w, http.StatusBadRequest, code, err.Error())
	case xerrors.KindUnauthorized:
		response.ErrorCode(w, http.StatusUnauthorized, code, err.Error())
	case xerrors.KindForbidden:
		response.ErrorCode(w, http.StatusForbidden, code, err.Error())
	case xerrors.KindConflict:
		response.ErrorCode(w, http.StatusConflict, code, err.Error())
	case xerrors.KindNotFound:
		response.ErrorCode(w, http.StatusNotFound, code, err.Error())
	default:
		log.Printf("internal error: %v", err)
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
