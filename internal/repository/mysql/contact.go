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

// ContactRepository implements domain.ContactRepository with stored procedures.
type ContactRepository struct {
	db *sql.DB
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	contact.ID = uuid.NewString()
	contact.Email = domain.NormalizeEmail(contact.Email)

	_, err := r.db.ExecContext(ctx, call("CreateContact", 5),
		contact.ID, contact.UserID, contact.Name, nullable(contact.Email), nullable(contact.LinkedIn))
	if err != nil {
		return fmt.Errorf("call CreateContact: %w", err)
	}

	now := time.Now().UTC()
	contact.CreatedAt = now
	contact.UpdatedAt = now
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	row := r.db.QueryRowContext(ctx, call("FindContactById", 1), id)
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("call FindContactById: %w", err)
	}
	return c, nil
}

func (r *ContactRepository) ListByUser(ctx context.Context, userID string) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, call("FindContactsByUser", 1), userID)
	if err != nil {
		return nil, fmt.Errorf("call FindContactsByUser: %w", err)
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	contact.Email = domain.NormalizeEmail(contact.Email)
	if err := affected(ctx, r.db, "UpdateContact",
		contact.ID, contact.Name, nullable(contact.Email), nullable(contact.LinkedIn)); err != nil {
		return err
	}
	contact.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	return affected(ctx, r.db, "DeleteContact", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(s scanner) (*domain.Contact, error) {
	c := &domain.Contact{}
	var email, linkedIn sql.NullString
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &email, &linkedIn, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Email = email.String
	c.LinkedIn = linkedIn.String
	return c, nil
}
