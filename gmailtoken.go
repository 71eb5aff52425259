package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/msomdec/outreach/internal/service"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
)

func gmailTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "gmail-token",
		Usage: "run the OAuth consent flow and print a Gmail refresh token",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "how long to wait for the browser callback",
				Value: 5 * time.Minute,
			},
		},
		Action: func(c *cli.Context) error {
			cfg := configFrom(c)
			if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" {
				return errors.New("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET are required")
			}
			oauthCfg := service.GmailConfig{
				ClientID:     cfg.GmailClientID,
				ClientSecret: cfg.GmailClientSecret,
				RedirectURL:  cfg.GmailRedirectURL,
			}.OAuthConfig()

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()

			tok, err := obtainToken(ctx, oauthCfg, c.App.Writer)
			if err != nil {
				return err
			}

			out := c.App.Writer
			fmt.Fprintln(out, "\nAdd these values to your environment:")
			fmt.Fprintf(out, "GMAIL_CLIENT_ID=%s\n", cfg.GmailClientID)
			fmt.Fprintf(out, "GMAIL_CLIENT_SECRET=%s\n", cfg.GmailClientSecret)
			fmt.Fprintf(out, "GMAIL_REFRESH_TOKEN=%s\n", tok.RefreshToken)
			fmt.Fprintln(out, "GMAIL_USER_EMAIL=you@gmail.com")
			return nil
		},
	}
}

// obtainToken prints the consent URL and serves the redirect URL's path on
// its host until Google calls back with a code or ctx ends.
func obtainToken(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	redirect, err := url.Parse(cfg.RedirectURL)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("invalid redirect url %q", cfg.RedirectURL)
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("listen for oauth callback: %w", err)
	}

	state := oauth2.GenerateVerifier()
	results := make(chan tokenResult, 1)
	mux := http.NewServeMux()
	mux.Handle("GET "+redirect.Path, tokenCallback(cfg, state, results))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer srv.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Open this URL in your browser and approve access:\n\n%s\n\nWaiting for authorization...\n", authURL)

	select {
	case res := <-results:
		return res.token, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for oauth callback: %w", ctx.Err())
	}
}

type tokenResult struct {
	token *oauth2.Token
	err   error
}

// tokenCallback checks state, exchanges the authorization code for tokens
// and reports the outcome on results. Only the first callback is reported.
func tokenCallback(cfg *oauth2.Config, state string, results chan<- tokenResult) http.Handler {
	report := func(res tokenResult) {
		select {
		case results <- res:
		default:
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subtle.ConstantTimeCompare([]byte(r.URL.Query().Get("state")), []byte(state)) != 1 {
			http.Error(w, "State mismatch.", http.StatusBadRequest)
			report(tokenResult{err: errors.New("oauth callback state mismatch")})
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Authorization code missing.", http.StatusBadRequest)
			report(tokenResult{err: errors.New("callback without authorization code")})
			return
		}

		tok, err := cfg.Exchange(r.Context(), code)
		if err != nil {
			slog.Error("exchange authorization code", "error", err)
			http.Error(w, "Token exchange failed.", http.StatusInternalServerError)
			report(tokenResult{err: fmt.Errorf("exchange authorization code: %w", err)})
			return
		}
		if tok.RefreshToken == "" {
			http.Error(w, "No refresh token returned.", http.StatusInternalServerError)
			report(tokenResult{err: errors.New("no refresh token returned; revoke access and retry")})
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, "<h1>Authorization complete</h1><p>You can close this window and return to the terminal.</p>")
		report(tokenResult{token: tok})
	})
}
