package handler

import (
	"net/http"

	"github.com/msomdec/outreach/internal/repository"
	"github.com/msomdec/outreach/internal/service"
)

// Deps holds everything the routes need.
type Deps struct {
	Auth         *service.AuthService
	Contacts     *service.ContactService
	Messages     *service.MessageService
	Emails       *service.EmailService
	Store        repository.Set
	AuthLimiter  service.RateLimiter
	Metrics      *Metrics
	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	gw := NewGateway(d.Auth.Sessions(), d.CookieSecure)
	api := func(h http.HandlerFunc) http.Handler { return gw.RequireAPI(h) }
	page := func(h http.HandlerFunc) http.Handler { return gw.RequirePage(h) }
	limited := func(h http.HandlerFunc) http.Handler { return RateLimit(d.AuthLimiter, d.Metrics, h) }

	authH := NewAuthHandler(d.Auth, d.CookieSecure)
	contactH := NewContactHandler(d.Contacts)
	messageH := NewMessageHandler(d.Messages)
	emailH := NewEmailHandler(d.Emails)
	appH := NewAppHandler(d.Contacts, d.Messages)

	// Operational.
	mux.Handle("GET /healthz", HandleHealthz(d.Store))
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	// Auth API.
	mux.Handle("POST /api/register", limited(authH.HandleRegister))
	mux.Handle("POST /api/login", limited(authH.HandleLogin))
	mux.HandleFunc("POST /api/logout", authH.HandleLogout)
	mux.Handle("GET /api/user", api(authH.HandleUser))

	// Drafts.
	mux.HandleFunc("POST /api/generate", messageH.HandlePreview)
	mux.Handle("POST /api/messages/generate", api(messageH.HandleGenerate))
	mux.Handle("GET /api/messages", api(messageH.HandleList))
	mux.Handle("GET /api/messages/stats", api(messageH.HandleStats))
	mux.Handle("GET /api/messages/search", api(messageH.HandleSearch))
	mux.Handle("POST /api/messages/send-email", api(messageH.HandleSendEmail))
	mux.Handle("GET /api/messages/{id}", api(messageH.HandleGet))
	mux.Handle("PUT /api/messages/{id}", api(messageH.HandleUpdate))
	mux.Handle("DELETE /api/messages/{id}", api(messageH.HandleDelete))

	// Contacts.
	mux.Handle("POST /api/contacts", api(contactH.HandleCreate))
	mux.Handle("GET /api/contacts", api(contactH.HandleList))
	mux.Handle("GET /api/contacts/{id}", api(contactH.HandleGet))
	mux.Handle("PUT /api/contacts/{id}", api(contactH.HandleUpdate))
	mux.Handle("DELETE /api/contacts/{id}", api(contactH.HandleDelete))

	// Mail.
	mux.Handle("GET /api/emails/health", api(emailH.HandleHealth))
	mux.Handle("POST /api/emails/send", api(emailH.HandleSend))
	mux.Handle("POST /api/emails/send-bulk", api(emailH.HandleSendBulk))

	// Pages.
	mux.Handle("GET /login", gw.Optional(http.HandlerFunc(authH.HandleLoginPage)))
	mux.Handle("POST /login", limited(authH.HandleLoginForm))
	mux.Handle("POST /register", limited(authH.HandleRegisterForm))
	mux.HandleFunc("POST /logout", authH.HandleLogoutForm)
	mux.Handle("GET /app", page(appH.HandleApp))
	mux.Handle("POST /app/generate", page(appH.HandleGenerate))
	mux.Handle("DELETE /app/contacts/{id}", page(appH.HandleDeleteContact))
	mux.Handle("GET /", gw.Optional(http.HandlerFunc(HandleHome)))
}

// NewServerHandler wraps mux with the middleware applied to every request.
func NewServerHandler(mux *http.ServeMux, metrics *Metrics) http.Handler {
	return SecurityHeaders(metrics.Instrument(mux))
}
