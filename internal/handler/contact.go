package handler

import (
	"net/http"

	"github.com/msomdec/outreach/internal/service"
)

// ContactHandler serves the owner-scoped contact API.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	LinkedIn string `json:"linkedin"`
}

func (c contactRequest) input() service.ContactInput {
	return service.ContactInput{Name: c.Name, Email: c.Email, LinkedIn: c.LinkedIn}
}

// HandleCreate adds a contact.
// POST /api/contacts
func (h *ContactHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	var req contactRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	contact, err := h.contacts.Create(r.Context(), claim.UserID, req.input())
	if err != nil {
		writeServiceError(w, err, "create contact")
		return
	}
	writeOK(w, http.StatusCreated, map[string]any{"contact": toContactDTO(contact)})
}

// HandleList returns the caller's contacts.
// GET /api/contacts
func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	contacts, err := h.contacts.List(r.Context(), claim.UserID)
	if err != nil {
		writeServiceError(w, err, "list contacts")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"contacts": toContactDTOs(contacts)})
}

// HandleGet returns one contact.
// GET /api/contacts/{id}
func (h *ContactHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	contact, err := h.contacts.Get(r.Context(), claim.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "get contact")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"contact": toContactDTO(contact)})
}

// HandleUpdate replaces a contact's fields.
// PUT /api/contacts/{id}
func (h *ContactHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	var req contactRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	contact, err := h.contacts.Update(r.Context(), claim.UserID, r.PathValue("id"), req.input())
	if err != nil {
		writeServiceError(w, err, "update contact")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"contact": toContactDTO(contact)})
}

// HandleDelete removes a contact.
// DELETE /api/contacts/{id}
func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	id := r.PathValue("id")
	if err := h.contacts.Delete(r.Context(), claim.UserID, id); err != nil {
		writeServiceError(w, err, "delete contact")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"contactId": id})
}
