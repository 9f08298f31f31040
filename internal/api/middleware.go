package api

import (
	"context"
	"net/http"

	"fyf-go/internal/model"
)

// SessionCookie is the cookie carrying the session id.
const SessionCookie = "session_id"

type contextKey int

const (
	userContextKey contextKey = iota
	sessionContextKey
)

// requireUser authenticates the request from its session cookie and puts
// the user and session into the request context.
//
// GetSession itself never compares valid_until with the current time, so
// the expiry check lives here: an expired session is rejected at the HTTP
// boundary even though the row is still retrievable.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "missing session cookie")
			return
		}

		session, err := s.service.GetSession(r.Context(), cookie.Value)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if session.ValidUntil.Before(s.clock.Now()) {
			writeMessage(w, http.StatusUnauthorized, "session expired")
			return
		}

		user, err := s.service.GetUser(r.Context(), session.UserID)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "session user no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestUser(r *http.Request) *model.User {
	user, _ := r.Context().Value(userContextKey).(*model.User)
	return user
}

func requestSession(r *http.Request) *model.Session {
	session, _ := r.Context().Value(sessionContextKey).(*model.Session)
	return session
}
