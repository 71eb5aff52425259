package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/outreach/internal/config"
	"github.com/msomdec/outreach/internal/handler"
	"github.com/msomdec/outreach/internal/repository"
	"github.com/msomdec/outreach/internal/repository/memory"
	"github.com/msomdec/outreach/internal/repository/mysql"
	"github.com/msomdec/outreach/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server",
		Action: func(c *cli.Context) error {
			return serve(c.Context, configFrom(c))
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	if cfg.UsesDefaultSecret() {
		slog.Warn("JWT_SECRET is not set, using the insecure development default")
	}

	db, err := mysql.Open(mysql.Options{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		Name:         cfg.DBName,
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	local := memory.New()
	if cfg.SeedUsersFile != "" {
		if err := seedUsers(ctx, local, cfg.SeedUsersFile); err != nil {
			return err
		}
	}

	backend := repository.CheckBackend(ctx, db, cfg.DBCheckTimeout)
	store := repository.Select(backend, db, local, cfg.UserStorePolicy)
	slog.Info("storage selected",
		"backend", store.Backend,
		"user_backend", store.UserBackend,
		"policy", cfg.UserStorePolicy,
	)

	sessions := service.NewSessionIssuer(cfg.JWTSecret, cfg.SessionTTL)
	authService := service.NewAuthService(store.Users, sessions, cfg.BcryptCost)
	contactService := service.NewContactService(store.Contacts)

	var llm service.Generator
	if cfg.OpenAIAPIKey != "" {
		llm = service.NewLLMGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		slog.Info("openai generation enabled", "model", cfg.OpenAIModel)
	}
	messageService := service.NewMessageService(store.Messages, store.AICalls, service.NewTemplateGenerator(nil), llm)

	emailService, err := newEmailService(ctx, cfg)
	if err != nil {
		return err
	}

	limiter, stopLimiter := newAuthLimiter(cfg)
	defer stopLimiter()

	metrics := handler.NewMetrics()
	messageService.SetObserver(metrics.ObserveGeneration)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Auth:         authService,
		Contacts:     contactService,
		Messages:     messageService,
		Emails:       emailService,
		Store:        store,
		AuthLimiter:  limiter,
		Metrics:      metrics,
		CookieSecure: cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewServerHandler(mux, metrics),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func seedUsers(ctx context.Context, store *memory.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed users: %w", err)
	}
	defer f.Close()

	n, err := store.ImportUsers(ctx, f)
	if err != nil {
		return err
	}
	slog.Info("seeded in-memory users", "count", n, "file", path)
	return nil
}

// newEmailService uses Gmail when all credentials are present and a
// logging mailer otherwise.
func newEmailService(ctx context.Context, cfg config.Config) (*service.EmailService, error) {
	status := service.MailerStatus{
		GmailConfigured: cfg.GmailConfigured(),
		HasClientID:     cfg.GmailClientID != "",
		HasClientSecret: cfg.GmailClientSecret != "",
		HasRefreshToken: cfg.GmailRefreshToken != "",
	}
	if !status.GmailConfigured {
		slog.Info("gmail not configured, emails will be simulated")
		return service.NewEmailService(service.LogMailer{}, status), nil
	}

	mailer, err := service.NewGmailMailer(ctx, service.GmailConfig{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		RefreshToken: cfg.GmailRefreshToken,
		From:         cfg.GmailUserEmail,
		RedirectURL:  cfg.GmailRedirectURL,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("gmail api configured", "from", cfg.GmailUserEmail)
	return service.NewEmailService(mailer, status), nil
}

// newAuthLimiter returns the Redis limiter when an address is configured
// and an in-process token bucket otherwise.
func newAuthLimiter(cfg config.Config) (service.RateLimiter, func()) {
	if cfg.RateLimitRedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimitRedisAddr,
			Password: cfg.RateLimitRedisPassword,
			DB:       cfg.RateLimitRedisDB,
		})
		slog.Info("auth rate limit backed by redis", "addr", cfg.RateLimitRedisAddr)
		return service.NewRedisRateLimiter(client, cfg.AuthRateLimit, cfg.AuthRateWindow), func() { client.Close() }
	}
	tb := service.NewWindowTokenBucket(cfg.AuthRateLimit, cfg.AuthRateWindow)
	return tb, tb.Stop
}
