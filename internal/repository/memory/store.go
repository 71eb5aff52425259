// Package memory implements every domain repository on in-process maps.
// Data is lost on restart unless seeded with ImportUsers at startup.
package memory

import (
	"sync"

	"github.com/msomdec/outreach/internal/domain"
	"github.com/oklog/ulid/v2"
)

// Store holds all in-memory records. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	contacts map[string]domain.Contact
	messages map[string]domain.Message
	aiCalls  []domain.AICall
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		contacts: make(map[string]domain.Contact),
		messages: make(map[string]domain.Message),
	}
}

// Users returns the user repository backed by this store.
func (s *Store) Users() domain.UserRepository { return &UserRepository{s: s} }

// Contacts returns the contact repository backed by this store.
func (s *Store) Contacts() domain.ContactRepository { return &ContactRepository{s: s} }

// Messages returns the message repository backed by this store.
func (s *Store) Messages() domain.MessageRepository { return &MessageRepository{s: s} }

// AICalls returns the AI call log backed by this store.
func (s *Store) AICalls() domain.AICallRepository { return &AICallRepository{s: s} }

// newID returns a lexicographically time-ordered identifier.
func newID() string {
	return ulid.Make().String()
}
