package api

import (
	"errors"
	"net/http"

	"fyf-go/internal/fyf"
)

type registerBody struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Username == "" || body.Password == "" {
		writeMessage(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.service.CreateUser(r.Context(), body.Username, body.DisplayName, body.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decodeBody(w, r, &body) {
		return
	}

	user, ok, err := s.service.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		if errors.Is(err, fyf.ErrUserNotFound) {
			writeMessage(w, http.StatusNotFound, "user not found")
			return
		}
		s.writeError(w, err)
		return
	}
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "wrong password")
		return
	}

	session, err := s.service.CreateSession(r.Context(), user.ID, s.loginTTL)
	if err != nil {
		s.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ValidUntil,
		HttpOnly: true,
	})
	writeMessage(w, http.StatusOK, "ok")
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, requestUser(r))
}

type updateUserBody struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var body updateUserBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Username == "" || body.Password == "" {
		writeMessage(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.service.UpdateUser(r.Context(), requestUser(r).ID, fyf.UserUpdate{
		Username:    body.Username,
		DisplayName: body.DisplayName,
		Password:    body.Password,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteUser(r.Context(), requestUser(r).ID); err != nil {
		s.writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "ok")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteSession(r.Context(), requestSession(r).ID); err != nil {
		s.writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeMessage(w, http.StatusOK, "ok")
}
