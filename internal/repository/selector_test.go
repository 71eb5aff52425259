package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/msomdec/outreach/internal/config"
	"github.com/msomdec/outreach/internal/domain"
	"github.com/msomdec/outreach/internal/repository"
	"github.com/msomdec/outreach/internal/repository/memory"
)

type fakePinger struct {
	err   error
	delay time.Duration
}

func (p fakePinger) Ping(ctx context.Context) error {
	select {
	case <-time.After(p.delay):
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// downUsers simulates the remote user store when the server is unreachable.
type downUsers struct{}

var errConnRefused = errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")

func (downUsers) Create(context.Context, *domain.User) error { return errConnRefused }
func (downUsers) GetByID(context.Context, string) (*domain.User, error) {
	return nil, errConnRefused
}
func (downUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, errConnRefused
}

// remoteProvider stands in for the MySQL store; only its user repository is
// exercised because everything else is expected to come from memory.
type remoteProvider struct {
	*memory.Store
	users domain.UserRepository
}

func (r remoteProvider) Users() domain.UserRepository { return r.users }

func TestCheckBackend(t *testing.T) {
	ctx := context.Background()

	if got := repository.CheckBackend(ctx, fakePinger{}, time.Second); got != repository.BackendMySQL {
		t.Fatalf("expected mysql for healthy ping, got %s", got)
	}
	if got := repository.CheckBackend(ctx, fakePinger{err: errConnRefused}, time.Second); got != repository.BackendMemory {
		t.Fatalf("expected memory for failed ping, got %s", got)
	}
	if got := repository.CheckBackend(ctx, fakePinger{delay: time.Second}, 10*time.Millisecond); got != repository.BackendMemory {
		t.Fatalf("expected memory for slow ping, got %s", got)
	}
	if got := repository.CheckBackend(ctx, nil, time.Second); got != repository.BackendMemory {
		t.Fatalf("expected memory without a database, got %s", got)
	}
}

func TestSelect_Healthy(t *testing.T) {
	remote := memory.New()
	local := memory.New()

	set := repository.Select(repository.BackendMySQL, remote, local, config.UserStorePinned)
	if set.Backend != repository.BackendMySQL || set.UserBackend != repository.BackendMySQL {
		t.Fatalf("unexpected backends: %s / %s", set.Backend, set.UserBackend)
	}

	ctx := context.Background()
	if err := set.Contacts.Create(ctx, &domain.Contact{UserID: "u", Name: "n"}); err != nil {
		t.Fatalf("Create contact: %v", err)
	}
	list, _ := remote.Contacts().ListByUser(ctx, "u")
	if len(list) != 1 {
		t.Fatal("expected contact to land in the remote store")
	}
}

// With the database down, contacts and messages fall back to memory while
// users stay pinned to the unreachable remote store.
func TestSelect_UnreachableDB_PinnedUsersFail(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := remoteProvider{Store: memory.New(), users: downUsers{}}

	backend := repository.CheckBackend(ctx, fakePinger{err: errConnRefused}, time.Second)
	set := repository.Select(backend, remote, local, config.UserStorePinned)

	if set.Backend != repository.BackendMemory {
		t.Fatalf("expected memory data backend, got %s", set.Backend)
	}
	if set.UserBackend != repository.BackendMySQL {
		t.Fatalf("expected users pinned to mysql, got %s", set.UserBackend)
	}

	if err := set.Messages.Create(ctx, &domain.Message{UserID: "u", Content: "hi", GeneratedBy: domain.GeneratedByTemplate}); err != nil {
		t.Fatalf("messages should work in memory: %v", err)
	}
	stats, _ := local.Messages().Stats(ctx, "u")
	if stats.Total != 1 {
		t.Fatal("expected message stored in memory")
	}

	if err := set.Users.Create(ctx, &domain.User{Email: "a@b.com", PasswordHash: "h"}); !errors.Is(err, errConnRefused) {
		t.Fatalf("expected user create to fail against the remote store, got %v", err)
	}
	if _, err := set.Users.GetByEmail(ctx, "a@b.com"); !errors.Is(err, errConnRefused) {
		t.Fatalf("expected user lookup to fail against the remote store, got %v", err)
	}
}

func TestSelect_UnreachableDB_FollowUsesMemoryForUsers(t *testing.T) {
	ctx := context.Background()
	local := memory.New()
	remote := remoteProvider{Store: memory.New(), users: downUsers{}}

	set := repository.Select(repository.BackendMemory, remote, local, config.UserStoreFollow)
	if set.UserBackend != repository.BackendMemory {
		t.Fatalf("expected users in memory, got %s", set.UserBackend)
	}
	if err := set.Users.Create(ctx, &domain.User{Email: "a@b.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := local.Users().GetByEmail(ctx, "A@B.com"); err != nil {
		t.Fatalf("expected user in memory store: %v", err)
	}
}

func TestSelect_NoRemoteConfigured(t *testing.T) {
	local := memory.New()
	set := repository.Select(repository.BackendMySQL, nil, local, config.UserStorePinned)
	if set.Backend != repository.BackendMemory || set.UserBackend != repository.BackendMemory {
		t.Fatalf("expected all-memory set without a remote provider, got %s / %s", set.Backend, set.UserBackend)
	}
}
