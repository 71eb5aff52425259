package domain

import (
	"context"
	"time"
)

const (
	GeneratedByAI       = "ai"
	GeneratedByTemplate = "template"
)

// Message is a prospecting draft, either generated or written by hand.
type Message struct {
	ID          string
	UserID      string
	ContactID   string // empty when the draft is not tied to a contact
	Content     string
	Tone        string
	Objective   string
	GeneratedBy string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MessageStats summarises a user's drafts by origin.
type MessageStats struct {
	Total    int
	AI       int
	Template int
}

// MessageRepository defines persistence operations for messages.
// List and Search return newest first.
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Message, error)
	Search(ctx context.Context, userID, term string, limit int) ([]Message, error)
	Stats(ctx context.Context, userID string) (*MessageStats, error)
	Update(ctx context.Context, message *Message) error
	// Delete removes the message only if it belongs to userID.
	// Returns ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id, userID string) error
}
