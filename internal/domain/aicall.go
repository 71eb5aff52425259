package domain

import (
	"context"
	"time"
)

const (
	AICallSuccess  = "success"
	AICallFallback = "fallback"
)

// AICall records one attempt to generate a draft with the LLM.
type AICall struct {
	ID           string
	UserID       string
	MessageID    string
	Status       string
	ErrorMessage string
	TokensUsed   int
	CreatedAt    time.Time
}

// AICallRepository persists generation audit records.
type AICallRepository interface {
	Log(ctx context.Context, call *AICall) error
}
