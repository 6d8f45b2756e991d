package handlers

import (
	"net/http"
	"strings"

	"hikayat/internal/models"
)

type LoginRequest struct {
	models.LoginRequest
	Redirect string `json:"redirect"`
}

type AuthResponse struct {
	User     *models.Session `json:"user"`
	Redirect string          `json:"redirect,omitempty"`
}

type SessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *models.Session `json:"user"`
}

// SafeRedirect accepts only local absolute paths and falls back to "/".
func SafeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	account, err := h.AuthService.Register(r.Context(), profile, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	// the client continues on the login page
	WriteSuccess(w, AuthResponse{User: models.NewSession(account), Redirect: "/login"}, http.StatusCreated)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.Validate.Struct(req.LoginRequest); err != nil {
		WriteError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	session, err := h.AuthService.Login(r.Context(), profile, req.Email, req.Password)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, AuthResponse{User: session, Redirect: SafeRedirect(req.Redirect)}, http.StatusOK)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	if err := h.AuthService.Logout(r.Context(), profile); err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "logged out"}, http.StatusOK)
}

func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(w, r)
	if !ok {
		return
	}

	session, authenticated, err := h.AuthService.CurrentSession(r.Context(), profile)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	WriteSuccess(w, SessionResponse{Authenticated: authenticated, User: session}, http.StatusOK)
}
