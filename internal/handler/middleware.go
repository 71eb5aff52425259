package handler

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/msomdec/outreach/internal/service"
)

const sessionCookieName = "token"

type contextKey string

const claimContextKey contextKey = "claim"

// ClaimFromContext extracts the authenticated identity from the request
// context. Returns nil if the request is not authenticated.
func ClaimFromContext(ctx context.Context) *service.Claim {
	claim, _ := ctx.Value(claimContextKey).(*service.Claim)
	return claim
}

// Gateway resolves session tokens and gates handlers on them. Invalid
// cookies are cleared with the same flags used to issue them.
type Gateway struct {
	sessions *service.SessionIssuer
	cookies  cookieWriter
}

// NewGateway creates a Gateway whose cookies carry Secure per cookieSecure.
func NewGateway(sessions *service.SessionIssuer, cookieSecure bool) *Gateway {
	return &Gateway{
		sessions: sessions,
		cookies:  cookieWriter{secure: cookieSecure, ttl: sessions.TTL()},
	}
}

// RequireAPI protects JSON routes. Requests without a valid token get a
// 401 JSON error; an invalid cookie is cleared.
func (g *Gateway) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claim, hadToken := authenticateRequest(r, g.sessions)
		if claim == nil {
			if hadToken {
				g.cookies.clear(w)
			}
			writeError(w, http.StatusUnauthorized, "Authentication required.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimContextKey, claim)))
	})
}

// RequirePage protects HTML routes. Requests without a valid token are
// redirected to /login; an invalid cookie is cleared.
func (g *Gateway) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claim, hadToken := authenticateRequest(r, g.sessions)
		if claim == nil {
			if hadToken {
				g.cookies.clear(w)
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimContextKey, claim)))
	})
}

// Optional attaches the identity when a valid token is present and
// otherwise lets the request through anonymously.
func (g *Gateway) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claim, _ := authenticateRequest(r, g.sessions); claim != nil {
			r = r.WithContext(context.WithValue(r.Context(), claimContextKey, claim))
		}
		next.ServeHTTP(w, r)
	})
}

// authenticateRequest resolves the session token from the cookie, or from
// an Authorization: Bearer header when no cookie is sent. hadToken reports
// whether any token was presented.
func authenticateRequest(r *http.Request, sessions *service.SessionIssuer) (claim *service.Claim, hadToken bool) {
	token := tokenFromRequest(r)
	if token == "" {
		return nil, false
	}
	claim, err := sessions.Resolve(token)
	if err != nil {
		return nil, true
	}
	return claim, true
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// cookieWriter issues and clears the session cookie with consistent flags.
type cookieWriter struct {
	secure bool
	ttl    time.Duration
}

func (c cookieWriter) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.ttl.Seconds()),
	})
}

func (c cookieWriter) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// SecurityHeaders sets conservative browser security headers on every response.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// RateLimit rejects requests with 429 once the client IP exceeds limiter.
func RateLimit(limiter service.RateLimiter, metrics *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientIP(r)) {
			metrics.rateLimited(r.Pattern)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Too many attempts. Please wait and try again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
