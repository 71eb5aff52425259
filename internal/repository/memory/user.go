package memory

import (
	"context"
	"errors"
	"time"

	"github.com/msomdec/outreach/internal/domain"
)

// ErrDuplicateID is returned when a preset user ID is already taken.
var ErrDuplicateID = errors.New("duplicate user id")

// UserRepository implements domain.UserRepository in memory.
type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, ok := r.s.findUserByEmail(email); ok {
		return domain.ErrDuplicateEmail
	}

	if user.ID == "" {
		user.ID = newID()
	} else if _, taken := r.s.users[user.ID]; taken {
		return ErrDuplicateID
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = email
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.findUserByEmail(domain.NormalizeEmail(email))
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

// findUserByEmail scans all users; callers must hold the lock.
func (s *Store) findUserByEmail(email string) (domain.User, bool) {
	for _, u := range s.users {
		if domain.NormalizeEmail(u.Email) == email {
			return u, true
		}
	}
	return domain.User{}, false
}
