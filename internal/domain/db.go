package domain

import "context"

// Database defines lifecycle operations for the remote database.
// The MySQL implementation owns its migrations (tables and stored
// procedures) so the whole remote backend stays swappable.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
