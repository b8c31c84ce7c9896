package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/infra/logging"
)

type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps a domain error to a status code and the message shown to clients.
// Store and driver details never leave the process.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, domain.ErrRateLimited.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, domain.ErrUnauthorized.Error()
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error()
	case errors.Is(err, domain.ErrInviteNotFound):
		return http.StatusNotFound, domain.ErrInviteNotFound.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrAlreadyClaimed):
		return http.StatusConflict, domain.ErrAlreadyClaimed.Error()
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, domain.ErrLinkExpired):
		return http.StatusGone, domain.ErrLinkExpired.Error()
	case domain.IsValidation(err):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrOrderCreateFailed):
		return http.StatusInternalServerError, domain.ErrOrderCreateFailed.Error()
	case errors.Is(err, domain.ErrSelectionSaveFailed):
		return http.StatusInternalServerError, domain.ErrSelectionSaveFailed.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	if code >= 500 {
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("route", routePattern(r)).Msg("request failed")
	}
	writeJSON(w, code, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
