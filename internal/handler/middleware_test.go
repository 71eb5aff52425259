package handler_test

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/msomdec/outreach/internal/config"
	"github.com/msomdec/outreach/internal/handler"
	"github.com/msomdec/outreach/internal/repository"
	"github.com/msomdec/outreach/internal/repository/memory"
	"github.com/msomdec/outreach/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests"

type testEnv struct {
	deps  handler.Deps
	store *memory.Store
}

func newTestEnv(t *testing.T, authLimit int) *testEnv {
	t.Helper()
	store := memory.New()
	set := repository.Select(repository.BackendMemory, nil, store, config.UserStoreFollow)

	sessions := service.NewSessionIssuer(testJWTSecret, time.Hour)
	limiter := service.NewWindowTokenBucket(authLimit, time.Minute)
	t.Cleanup(limiter.Stop)

	messages := service.NewMessageService(set.Messages, set.AICalls,
		service.NewTemplateGenerator(rand.New(rand.NewPCG(1, 2))), nil)
	metrics := handler.NewMetrics()
	messages.SetObserver(metrics.ObserveGeneration)

	return &testEnv{
		store: store,
		deps: handler.Deps{
			Auth:        service.NewAuthService(set.Users, sessions, 4),
			Contacts:    service.NewContactService(set.Contacts),
			Messages:    messages,
			Emails:      service.NewEmailService(service.LogMailer{}, service.MailerStatus{}),
			Store:       set,
			AuthLimiter: limiter,
			Metrics:     metrics,
		},
	}
}

func newTestServer(t *testing.T, env *testEnv) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, env.deps)
	srv := httptest.NewServer(handler.NewServerHandler(mux, env.deps.Metrics))
	t.Cleanup(srv.Close)
	return srv
}

// loginToken registers and logs in a user directly through the service.
func (e *testEnv) loginToken(t *testing.T, email string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := e.deps.Auth.Register(ctx, email, "password123", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, token, err := e.deps.Auth.Login(ctx, email, "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestGatewayRequireAPI_ValidCookie(t *testing.T) {
	env := newTestEnv(t, 100)
	token := env.loginToken(t, "valid@example.com")

	var gotEmail string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claim := handler.ClaimFromContext(r.Context()); claim != nil {
			gotEmail = claim.Email
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()

	handler.NewGateway(env.deps.Auth.Sessions(), false).RequireAPI(inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotEmail != "valid@example.com" {
		t.Fatalf("expected claim email valid@example.com, got %q", gotEmail)
	}
}

func TestGatewayRequireAPI_BearerHeader(t *testing.T) {
	env := newTestEnv(t, 100)
	token := env.loginToken(t, "bearer@example.com")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.NewGateway(env.deps.Auth.Sessions(), false).RequireAPI(inner).ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestGatewayRequireAPI_NoToken(t *testing.T) {
	env := newTestEnv(t, 100)
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	handler.NewGateway(env.deps.Auth.Sessions(), false).RequireAPI(inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if called {
		t.Fatal("inner handler should not run without a token")
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatal("no cookie should be cleared when none was sent")
	}
}

func TestGatewayRequireAPI_InvalidTokenClearsCookie(t *testing.T) {
	env := newTestEnv(t, 100)
	other := service.NewSessionIssuer("some-other-secret", time.Hour)
	forged, err := other.Issue("u1", "forged@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var sawClaim bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawClaim = handler.ClaimFromContext(r.Context()) != nil
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: forged})
	w := httptest.NewRecorder()

	handler.NewGateway(env.deps.Auth.Sessions(), false).RequireAPI(inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if sawClaim {
		t.Fatal("forged token must not attach an identity")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "token" || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected the token cookie to be cleared, got %+v", cookies)
	}
}

func TestGatewayRequirePage_RedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, 100)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/app", nil)
	w := httptest.NewRecorder()
	handler.NewGateway(env.deps.Auth.Sessions(), false).RequirePage(inner).ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %s", loc)
	}
}

func TestGatewayOptional_Anonymous(t *testing.T) {
	env := newTestEnv(t, 100)
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if handler.ClaimFromContext(r.Context()) != nil {
			t.Fatal("expected no claim for an anonymous request")
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})
	handler.NewGateway(env.deps.Auth.Sessions(), false).Optional(inner).ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("inner handler should run for anonymous requests")
	}
}

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	w := httptest.NewRecorder()
	handler.SecurityHeaders(inner).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected DENY, got %q", got)
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	limiter := service.NewWindowTokenBucket(2, time.Minute)
	defer limiter.Stop()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := handler.RateLimit(limiter, nil, inner)

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on the third request, got %d", codes[2])
	}

	// A different client is unaffected.
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", w.Code)
	}
}

func TestGatewayRequireAPI_ClearedCookieKeepsConfiguredSecure(t *testing.T) {
	env := newTestEnv(t, 100)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	// Plain HTTP request, as seen behind a TLS-terminating proxy.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "expired-or-forged"})
	w := httptest.NewRecorder()

	handler.NewGateway(env.deps.Auth.Sessions(), true).RequireAPI(inner).ServeHTTP(w, req)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected the token cookie to be cleared, got %+v", cookies)
	}
	if !cookies[0].Secure {
		t.Fatal("cleared cookie must carry the configured Secure flag")
	}
}
