package handler

import (
	"time"

	"github.com/msomdec/outreach/internal/domain"
)

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email, Name: u.Name}
}

// ContactDTO is the JSON representation of a contact.
type ContactDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	LinkedIn  string `json:"linkedin"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toContactDTO(c *domain.Contact) ContactDTO {
	return ContactDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		LinkedIn:  c.LinkedIn,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func toContactDTOs(contacts []domain.Contact) []ContactDTO {
	dtos := make([]ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = toContactDTO(&contacts[i])
	}
	return dtos
}

// MessageDTO is the JSON representation of a message.
type MessageDTO struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	ContactID   *string `json:"contactId"`
	Content     string  `json:"content"`
	Tone        string  `json:"tone"`
	Objective   string  `json:"objective"`
	GeneratedBy string  `json:"generatedBy"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toMessageDTO(m *domain.Message) MessageDTO {
	dto := MessageDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		Content:     m.Content,
		Tone:        m.Tone,
		Objective:   m.Objective,
		GeneratedBy: m.GeneratedBy,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
	}
	if m.ContactID != "" {
		id := m.ContactID
		dto.ContactID = &id
	}
	return dto
}

func toMessageDTOs(messages []domain.Message) []MessageDTO {
	dtos := make([]MessageDTO, len(messages))
	for i := range messages {
		dtos[i] = toMessageDTO(&messages[i])
	}
	return dtos
}

// StatsDTO is the JSON representation of message statistics.
type StatsDTO struct {
	Total    int `json:"total"`
	AI       int `json:"ai"`
	Template int `json:"template"`
}
