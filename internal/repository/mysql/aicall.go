package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/outreach/internal/domain"
)

// AICallRepository writes generation audit rows through LogAICall.
type AICallRepository struct {
	db *sql.DB
}

func (r *AICallRepository) Log(ctx context.Context, c *domain.AICall) error {
	c.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx, call("LogAICall", 6),
		c.ID, c.UserID, nullable(c.MessageID), c.Status, nullable(c.ErrorMessage), c.TokensUsed)
	if err != nil {
		return fmt.Errorf("call LogAICall: %w", err)
	}
	c.CreatedAt = time.Now().UTC()
	return nil
}
