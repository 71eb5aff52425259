package memory

import (
	"context"
	"sort"
	"time"

	"github.com/msomdec/outreach/internal/domain"
)

// ContactRepository implements domain.ContactRepository in memory.
type ContactRepository struct {
	s *Store
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	contact.ID = newID()
	contact.Email = domain.NormalizeEmail(contact.Email)
	contact.CreatedAt = now
	contact.UpdatedAt = now
	r.s.contacts[contact.ID] = *contact
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.contacts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *ContactRepository) ListByUser(ctx context.Context, userID string) ([]domain.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var contacts []domain.Contact
	for _, c := range r.s.contacts {
		if c.UserID == userID {
			contacts = append(contacts, c)
		}
	}
	sort.Slice(contacts, func(i, j int) bool {
		return newerFirst(contacts[i].CreatedAt, contacts[j].CreatedAt, contacts[i].ID, contacts[j].ID)
	})
	return contacts, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.contacts[contact.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Name = contact.Name
	existing.Email = domain.NormalizeEmail(contact.Email)
	existing.LinkedIn = contact.LinkedIn
	existing.UpdatedAt = time.Now().UTC()
	r.s.contacts[contact.ID] = existing
	*contact = existing
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.contacts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.contacts, id)
	return nil
}

// newerFirst orders by creation time descending, breaking ties on the
// time-ordered ID.
func newerFirst(a, b time.Time, aID, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID > bID
}
