package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/outreach/internal/domain"
	"github.com/msomdec/outreach/internal/service"
	"github.com/msomdec/outreach/internal/view"
)

// AuthHandler handles registration, login and logout for both the JSON API
// and the HTML forms.
type AuthHandler struct {
	auth    *service.AuthService
	cookies cookieWriter
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		cookies: cookieWriter{secure: cookieSecure, ttl: auth.Sessions().TTL()},
	}
}

// HandleRegister processes a JSON registration request.
// POST /api/register
// Request:  {"email":"...","password":"...","name":"..."}
// Response: 201 {"ok":true,"user":{...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, err, "register user")
		return
	}

	writeOK(w, http.StatusCreated, map[string]any{"user": toUserDTO(user)})
}

// HandleLogin processes a JSON login request and sets the session cookie.
// POST /api/login
// Request:  {"email":"...","password":"..."}
// Response: {"ok":true,"user":{...},"token":"..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		writeServiceError(w, err, "login user")
		return
	}

	h.cookies.set(w, token)
	writeOK(w, http.StatusOK, map[string]any{"user": toUserDTO(user), "token": token})
}

// HandleLogout clears the session cookie.
// POST /api/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.cookies.clear(w)
	writeOK(w, http.StatusOK, nil)
}

// HandleUser returns the identity carried by the session token.
// GET /api/user
// Response: {"ok":true,"user":{"id":"...","email":"..."}}
func (h *AuthHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	if claim == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"user": UserDTO{ID: claim.UserID, Email: claim.Email}})
}

// HandleLoginPage renders the sign-in form, or sends signed-in users to /app.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if ClaimFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/app", http.StatusSeeOther)
		return
	}
	notice := ""
	if r.URL.Query().Get("registered") == "1" {
		notice = "Account created. You can sign in now."
	}
	view.LoginPage("", notice).Render(r.Context(), w)
}

// HandleLoginForm processes the sign-in form.
// POST /login
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, token, err := h.auth.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		msg := "Invalid email or password."
		status := http.StatusUnauthorized
		if !errors.Is(err, domain.ErrUnauthorized) && !errors.Is(err, domain.ErrInvalidInput) {
			slog.Error("login user", "error", err)
			msg = "Sign in is unavailable right now. Please try again later."
			status = http.StatusInternalServerError
		}
		w.WriteHeader(status)
		view.LoginPage(msg, "").Render(r.Context(), w)
		return
	}

	h.cookies.set(w, token)
	http.Redirect(w, r, "/app", http.StatusSeeOther)
}

// HandleRegisterForm processes the registration form.
// POST /register
func (h *AuthHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err := h.auth.Register(r.Context(), r.FormValue("email"), r.FormValue("password"), r.FormValue("name"))
	if err != nil {
		var msg string
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			msg = "An account with that email already exists."
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInvalidInput):
			msg = err.Error()
		default:
			slog.Error("register user", "error", err)
			msg = "Registration is unavailable right now. Please try again later."
			status = http.StatusInternalServerError
		}
		w.WriteHeader(status)
		view.LoginPage(msg, "").Render(r.Context(), w)
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// HandleLogoutForm clears the cookie and returns to the sign-in page.
// POST /logout
func (h *AuthHandler) HandleLogoutForm(w http.ResponseWriter, r *http.Request) {
	h.cookies.clear(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
