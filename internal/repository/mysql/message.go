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

// MessageRepository implements domain.MessageRepository with stored procedures.
type MessageRepository struct {
	db *sql.DB
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	message.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx, call("CreateMessage", 7),
		message.ID, message.UserID, nullable(message.ContactID), message.Content,
		nullable(message.Tone), nullable(message.Objective), message.GeneratedBy)
	if err != nil {
		return fmt.Errorf("call CreateMessage: %w", err)
	}

	now := time.Now().UTC()
	message.CreatedAt = now
	message.UpdatedAt = now
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	row := r.db.QueryRowContext(ctx, call("GetMessageById", 1), id)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("call GetMessageById: %w", err)
	}
	return m, nil
}

func (r *MessageRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Message, error) {
	return r.list(ctx, "GetMessagesByUser", userID, limit, offset)
}

func (r *MessageRepository) Search(ctx context.Context, userID, term string, limit int) ([]domain.Message, error) {
	return r.list(ctx, "SearchMessages", userID, term, limit)
}

func (r *MessageRepository) Stats(ctx context.Context, userID string) (*domain.MessageStats, error) {
	stats := &domain.MessageStats{}
	err := r.db.QueryRowContext(ctx, call("GetMessageStats", 1), userID).
		Scan(&stats.Total, &stats.AI, &stats.Template)
	if err != nil {
		return nil, fmt.Errorf("call GetMessageStats: %w", err)
	}
	return stats, nil
}

func (r *MessageRepository) Update(ctx context.Context, message *domain.Message) error {
	if err := affected(ctx, r.db, "UpdateMessage",
		message.ID, message.Content, nullable(message.Tone), nullable(message.Objective)); err != nil {
		return err
	}
	message.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id, userID string) error {
	return affected(ctx, r.db, "DeleteMessage", id, userID)
}

func (r *MessageRepository) list(ctx context.Context, proc string, args ...any) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, call(proc, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", proc, err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func scanMessage(s scanner) (*domain.Message, error) {
	m := &domain.Message{}
	var contactID, tone, objective sql.NullString
	err := s.Scan(&m.ID, &m.UserID, &contactID, &m.Content, &tone, &objective,
		&m.GeneratedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.ContactID = contactID.String
	m.Tone = tone.String
	m.Objective = objective.String
	return m, nil
}
