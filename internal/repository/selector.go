// Package repository chooses which storage backend serves each entity.
//
// The choice is made once at startup and handed to the services as an
// immutable Set; nothing re-checks the database while the process runs.
package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/msomdec/outreach/internal/config"
	"github.com/msomdec/outreach/internal/domain"
)

// Backend names the storage a Set is drawing from.
type Backend string

const (
	BackendMySQL  Backend = "mysql"
	BackendMemory Backend = "memory"
)

// Pinger is anything that can confirm a database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Provider vends one repository per entity.
type Provider interface {
	Users() domain.UserRepository
	Contacts() domain.ContactRepository
	Messages() domain.MessageRepository
	AICalls() domain.AICallRepository
}

// Set is the resolved collection of repositories. Backend reports where
// contacts and messages live; UserBackend reports where users live, which
// differs under the pinned policy when the database is down.
type Set struct {
	Backend     Backend
	UserBackend Backend
	Users       domain.UserRepository
	Contacts    domain.ContactRepository
	Messages    domain.MessageRepository
	AICalls     domain.AICallRepository
}

// CheckBackend pings the database once, bounded by timeout. Any failure selects
// the memory backend; it is logged but never fatal.
func CheckBackend(ctx context.Context, p Pinger, timeout time.Duration) Backend {
	if p == nil {
		return BackendMemory
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		slog.Warn("database unreachable, using in-memory storage", "error", err)
		return BackendMemory
	}
	slog.Info("database reachable, using mysql storage")
	return BackendMySQL
}

// Select resolves the repositories for the checked backend. Contacts,
// messages and AI call logs always follow the check. Users follow it only
// under config.UserStoreFollow; under config.UserStorePinned they stay on
// remote even when it is unreachable, and register and login then fail.
func Select(backend Backend, remote, memory Provider, policy string) Set {
	data := memory
	if backend == BackendMySQL && remote != nil {
		data = remote
	} else {
		backend = BackendMemory
	}

	set := Set{
		Backend:  backend,
		Contacts: data.Contacts(),
		Messages: data.Messages(),
		AICalls:  data.AICalls(),
	}

	switch {
	case policy == config.UserStorePinned && remote != nil:
		set.Users = remote.Users()
		set.UserBackend = BackendMySQL
	default:
		set.Users = data.Users()
		set.UserBackend = backend
	}
	return set
}
