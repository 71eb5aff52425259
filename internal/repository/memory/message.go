package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/msomdec/outreach/internal/domain"
)

// MessageRepository implements domain.MessageRepository in memory.
type MessageRepository struct {
	s *Store
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	message.ID = newID()
	message.CreatedAt = now
	message.UpdatedAt = now
	r.s.messages[message.ID] = *message
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.messages[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (r *MessageRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return page(r.s.userMessages(userID, nil), limit, offset), nil
}

func (r *MessageRepository) Search(ctx context.Context, userID, term string, limit int) ([]domain.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	term = strings.ToLower(term)
	matches := r.s.userMessages(userID, func(m domain.Message) bool {
		return strings.Contains(strings.ToLower(m.Content), term) ||
			strings.Contains(strings.ToLower(m.Objective), term)
	})
	return page(matches, limit, 0), nil
}

func (r *MessageRepository) Stats(ctx context.Context, userID string) (*domain.MessageStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	stats := &domain.MessageStats{}
	for _, m := range r.s.messages {
		if m.UserID != userID {
			continue
		}
		stats.Total++
		switch m.GeneratedBy {
		case domain.GeneratedByAI:
			stats.AI++
		case domain.GeneratedByTemplate:
			stats.Template++
		}
	}
	return stats, nil
}

func (r *MessageRepository) Update(ctx context.Context, message *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.messages[message.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Content = message.Content
	existing.Tone = message.Tone
	existing.Objective = message.Objective
	existing.UpdatedAt = time.Now().UTC()
	r.s.messages[message.ID] = existing
	*message = existing
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok || m.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.s.messages, id)
	return nil
}

// userMessages returns a user's messages newest first; callers must hold the lock.
func (s *Store) userMessages(userID string, keep func(domain.Message) bool) []domain.Message {
	var out []domain.Message
	for _, m := range s.messages {
		if m.UserID != userID {
			continue
		}
		if keep != nil && !keep(m) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out
}

func page(messages []domain.Message, limit, offset int) []domain.Message {
	if offset >= len(messages) {
		return nil
	}
	messages = messages[offset:]
	if limit > 0 && limit < len(messages) {
		messages = messages[:limit]
	}
	return messages
}
