package memory

import (
	"context"
	"time"

	"github.com/msomdec/outreach/internal/domain"
)

// AICallRepository appends generation audit records to the store.
type AICallRepository struct {
	s *Store
}

func (r *AICallRepository) Log(ctx context.Context, call *domain.AICall) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	call.ID = newID()
	call.CreatedAt = time.Now().UTC()
	r.s.aiCalls = append(r.s.aiCalls, *call)
	return nil
}

// AICallCount reports how many generation attempts have been logged.
func (s *Store) AICallCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.aiCalls)
}
