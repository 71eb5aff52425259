package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/msomdec/outreach/internal/domain"
)

// Paging bounds for message listings.
const (
	DefaultListLimit   = 50
	DefaultSearchLimit = 20
	MaxListLimit       = 200
)

// GenerationObserver is told the source of every saved draft.
type GenerationObserver func(source string, fallback bool)

// MessageService generates, stores and queries prospecting drafts.
type MessageService struct {
	messages  domain.MessageRepository
	aiCalls   domain.AICallRepository
	templates Generator
	llm       Generator // nil when no API key is configured
	observe   GenerationObserver
}

// NewMessageService creates a new MessageService. llm may be nil.
func NewMessageService(messages domain.MessageRepository, aiCalls domain.AICallRepository, templates, llm Generator) *MessageService {
	return &MessageService{
		messages:  messages,
		aiCalls:   aiCalls,
		templates: templates,
		llm:       llm,
		observe:   func(string, bool) {},
	}
}

// SetObserver registers a callback for generation outcomes.
func (s *MessageService) SetObserver(fn GenerationObserver) {
	if fn != nil {
		s.observe = fn
	}
}

// AIEnabled reports whether an LLM generator is configured.
func (s *MessageService) AIEnabled() bool {
	return s.llm != nil
}

// Preview renders a template draft without saving it.
func (s *MessageService) Preview(ctx context.Context, req DraftRequest) (*Draft, error) {
	return s.templates.Generate(ctx, req)
}

// Generate writes a draft, with the LLM when useAI is set and configured,
// falling back to a template on failure, and saves it for userID.
// GeneratedBy records the source that actually produced the text.
func (s *MessageService) Generate(ctx context.Context, userID string, req DraftRequest, useAI bool) (*domain.Message, error) {
	gen := s.templates
	attemptedAI := useAI && s.llm != nil
	if attemptedAI {
		gen = NewFallbackGenerator(s.llm, s.templates)
	}

	draft, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	req, _ = req.normalize()

	msg := &domain.Message{
		UserID:      userID,
		Content:     draft.Content,
		Tone:        req.Tone,
		Objective:   req.Objective,
		GeneratedBy: draft.Source,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	s.observe(draft.Source, draft.FallbackErr != nil)

	if attemptedAI {
		s.logAICall(ctx, userID, msg.ID, draft)
	}
	return msg, nil
}

// logAICall records the attempt. Failures are logged and not returned.
func (s *MessageService) logAICall(ctx context.Context, userID, messageID string, draft *Draft) {
	call := &domain.AICall{
		UserID:     userID,
		MessageID:  messageID,
		Status:     domain.AICallSuccess,
		TokensUsed: draft.TokensUsed,
	}
	if draft.FallbackErr != nil {
		call.Status = domain.AICallFallback
		call.ErrorMessage = draft.FallbackErr.Error()
	}
	if err := s.aiCalls.Log(ctx, call); err != nil {
		slog.Error("log ai call", "error", err, "message_id", messageID)
	}
}

// SentDraft is a message the user sent by hand to a named contact.
type SentDraft struct {
	ContactName string
	Company     string
	Content     string
	Tone        string
	Objective   string
}

// SaveSent records a simulated send of a draft and stores it for userID.
func (s *MessageService) SaveSent(ctx context.Context, userID, userEmail string, in SentDraft) (*domain.Message, error) {
	if strings.TrimSpace(in.ContactName) == "" || strings.TrimSpace(in.Company) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: contactName, company and content are required", domain.ErrInvalidInput)
	}

	slog.Info("simulated email", "from", userEmail, "contact", in.ContactName, "company", in.Company)

	msg := &domain.Message{
		UserID:      userID,
		Content:     in.Content,
		Tone:        in.Tone,
		Objective:   in.Objective,
		GeneratedBy: domain.GeneratedByTemplate,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return msg, nil
}

// List returns a page of the user's messages, newest first.
func (s *MessageService) List(ctx context.Context, userID string, limit, offset int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	offset = max(offset, 0)

	messages, err := s.messages.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// Search finds the user's messages whose content or objective contains term.
func (s *MessageService) Search(ctx context.Context, userID, term string, limit int) ([]domain.Message, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxListLimit)

	messages, err := s.messages.Search(ctx, userID, term, limit)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	return messages, nil
}

// Stats counts the user's messages by origin.
func (s *MessageService) Stats(ctx context.Context, userID string) (*domain.MessageStats, error) {
	stats, err := s.messages.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("message stats: %w", err)
	}
	return stats, nil
}

// Get returns a message, ErrNotFound if missing or ErrForbidden if owned by
// someone else.
func (s *MessageService) Get(ctx context.Context, userID, id string) (*domain.Message, error) {
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	if m.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return m, nil
}

// MessageUpdate holds the editable fields of a message; nil leaves a field
// unchanged.
type MessageUpdate struct {
	Content   *string
	Tone      *string
	Objective *string
}

// Update edits a message owned by userID.
func (s *MessageService) Update(ctx context.Context, userID, id string, in MessageUpdate) (*domain.Message, error) {
	m, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", domain.ErrInvalidInput)
		}
		m.Content = *in.Content
	}
	if in.Tone != nil {
		m.Tone = *in.Tone
	}
	if in.Objective != nil {
		m.Objective = *in.Objective
	}

	if err := s.messages.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}
	return m, nil
}

// Delete removes a message owned by userID. A message owned by someone else
// is reported as not found.
func (s *MessageService) Delete(ctx context.Context, userID, id string) error {
	if err := s.messages.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
