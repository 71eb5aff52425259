package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/outreach/internal/domain"
)

// UserRepository implements domain.UserRepository with stored procedures.
type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	email := domain.NormalizeEmail(user.Email)

	_, err := r.db.ExecContext(ctx, call("CreateUser", 4), id, email, user.PasswordHash, user.Name)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("call CreateUser: %w", err)
	}

	user.ID = id
	user.Email = email
	user.CreatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, "FindUserById", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(ctx, "FindUserByEmail", domain.NormalizeEmail(email))
}

func (r *UserRepository) find(ctx context.Context, proc, arg string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, call(proc, 1), arg).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("call %s: %w", proc, err)
	}
	return user, nil
}
