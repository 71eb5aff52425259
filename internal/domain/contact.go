package domain

import (
	"context"
	"time"
)

// Contact is a prospect owned by a single user.
type Contact struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	LinkedIn  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactRepository defines persistence operations for contacts.
// ListByUser returns newest first.
type ContactRepository interface {
	Create(ctx context.Context, contact *Contact) error
	GetByID(ctx context.Context, id string) (*Contact, error)
	ListByUser(ctx context.Context, userID string) ([]Contact, error)
	Update(ctx context.Context, contact *Contact) error
	Delete(ctx context.Context, id string) error
}
