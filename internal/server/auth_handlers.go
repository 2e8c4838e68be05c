package server

import (
	"errors"
	"net/http"

	"github.com/bestsplit/bestsplit/internal/auth"
	"github.com/bestsplit/bestsplit/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("email and name required"))
		return
	}

	user, err := s.authn.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrEmailExists):
			writeError(w, http.StatusBadRequest, err)
		default:
			writeServiceError(w, err)
		}
		return
	}

	s.writeSession(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.authn.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials)
		return
	}

	s.writeSession(w, http.StatusOK, user)
}

func (s *Server) writeSession(w http.ResponseWriter, status int, user *models.User) {
	token, err := s.jwt.Generate(user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, status, sessionResponse{Token: token, User: user})
}
