package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/msomdec/outreach/internal/domain"
)

// seedUser is the on-disk shape of a bulk-imported user.
type seedUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ImportUsers loads a JSON array of users into the store. Records with an
// email or ID that is already present are skipped. It returns the number imported.
func (s *Store) ImportUsers(ctx context.Context, r io.Reader) (int, error) {
	var records []seedUser
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode seed users: %w", err)
	}

	users := s.Users()
	imported := 0
	for _, rec := range records {
		if rec.Email == "" || rec.PasswordHash == "" {
			return imported, fmt.Errorf("%w: seed user without email or password hash", domain.ErrInvalidInput)
		}
		u := &domain.User{
			ID:           rec.ID,
			Email:        rec.Email,
			Name:         rec.Name,
			PasswordHash: rec.PasswordHash,
			CreatedAt:    rec.CreatedAt,
		}
		if err := users.Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, ErrDuplicateID) {
				slog.Warn("skipping seed user", "email", rec.Email, "id", rec.ID, "error", err)
				continue
			}
			return imported, fmt.Errorf("import user %s: %w", rec.Email, err)
		}
		imported++
	}
	return imported, nil
}
