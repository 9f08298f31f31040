package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fyf-go/internal/fyf"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps domain errors onto status codes. Anything outside the
// domain taxonomy is an infrastructure failure: logged, reported as 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fyf.ErrEntryNotFound), errors.Is(err, fyf.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, fyf.ErrSessionNotFound):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, fyf.ErrNotAuthor):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, fyf.ErrSessionTooLong), errors.Is(err, fyf.ErrParentCycle):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fyf.ErrUsernameTaken):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
