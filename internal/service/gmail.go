package service

import (
	"context"
	"fmt"

	"github.com/msomdec/outreach/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailConfig holds the OAuth client and the refresh token granted to it.
type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	From         string
	RedirectURL  string
}

// OAuthConfig returns the OAuth2 client configuration for the send scope.
func (c GmailConfig) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
}

// GmailMailer sends mail as the authorised account through the Gmail API.
type GmailMailer struct {
	svc  *gmail.Service
	from string
}

// NewGmailMailer builds a Gmail client whose access tokens are refreshed
// from cfg.RefreshToken. Extra options are applied after the token source.
func NewGmailMailer(ctx context.Context, cfg GmailConfig, opts ...option.ClientOption) (*GmailMailer, error) {
	ts := cfg.OAuthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &GmailMailer{svc: svc, from: cfg.From}, nil
}

func (m *GmailMailer) Send(ctx context.Context, email Email) (*SendResult, error) {
	msg := &gmail.Message{Raw: buildRawMessage(m.from, email)}
	sent, err := m.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: gmail send: %v", domain.ErrUpstream, err)
	}
	return &SendResult{MessageID: sent.Id, ThreadID: sent.ThreadId}, nil
}
