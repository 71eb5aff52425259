package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/outreach/internal/domain"
	"github.com/msomdec/outreach/internal/service"
	"github.com/msomdec/outreach/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

const appMessagePageSize = 20

// AppHandler serves the signed-in workspace page and its Datastar actions.
type AppHandler struct {
	contacts *service.ContactService
	messages *service.MessageService
}

// NewAppHandler creates a new AppHandler.
func NewAppHandler(contacts *service.ContactService, messages *service.MessageService) *AppHandler {
	return &AppHandler{contacts: contacts, messages: messages}
}

// HandleApp renders the workspace.
// GET /app
func (h *AppHandler) HandleApp(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())

	contacts, err := h.contacts.List(r.Context(), claim.UserID)
	if err != nil {
		slog.Error("list contacts", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	messages, err := h.messages.List(r.Context(), claim.UserID, appMessagePageSize, 0)
	if err != nil {
		slog.Error("list messages", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	stats, err := h.messages.Stats(r.Context(), claim.UserID)
	if err != nil {
		slog.Error("message stats", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	view.AppPage(view.AppPageData{
		Email:     claim.Email,
		AIEnabled: h.messages.AIEnabled(),
		Stats:     *stats,
		Contacts:  contacts,
		Messages:  messages,
	}).Render(r.Context(), w)
}

// HandleGenerate writes a draft and patches it into the page.
// POST /app/generate
func (h *AppHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	useAI := r.FormValue("useAI") == "true"
	msg, err := h.messages.Generate(r.Context(), claim.UserID, service.DraftRequest{
		Name:      r.FormValue("name"),
		Company:   r.FormValue("company"),
		Tone:      r.FormValue("tone"),
		Objective: r.FormValue("objective"),
		Context:   r.FormValue("context"),
	}, useAI)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		text := "Name and company are required."
		if !errors.Is(err, domain.ErrInvalidInput) {
			slog.Error("generate message", "error", err)
			text = "Could not generate a draft. Please try again."
		}
		sse.PatchElementTempl(
			view.DraftError(text),
			datastar.WithSelectorID("draft"),
			datastar.WithModeInner(),
		)
		return
	}

	fallback := useAI && h.messages.AIEnabled() && msg.GeneratedBy == domain.GeneratedByTemplate
	sse.PatchElementTempl(
		view.DraftFragment(*msg, fallback),
		datastar.WithSelectorID("draft"),
		datastar.WithModeInner(),
	)
	sse.PatchElementTempl(
		view.MessageItem(*msg),
		datastar.WithSelectorID("message-list"),
		datastar.WithModePrepend(),
	)
}

// HandleDeleteContact removes a contact and its row.
// DELETE /app/contacts/{id}
func (h *AppHandler) HandleDeleteContact(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.contacts.Delete(r.Context(), claim.UserID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Not Found", http.StatusNotFound)
		case errors.Is(err, domain.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			slog.Error("delete contact", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.RemoveElementByID("contact-" + id)
}
