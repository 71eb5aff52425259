package handler

import (
	"net/http"
	"strconv"

	"github.com/msomdec/outreach/internal/service"
)

// MessageHandler serves the message API.
type MessageHandler struct {
	messages *service.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messages *service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type generateRequest struct {
	Name              string   `json:"name"`
	Company           string   `json:"company"`
	Tone              string   `json:"tone"`
	Objective         string   `json:"objective"`
	Highlights        []string `json:"highlights"`
	AdditionalContext string   `json:"additionalContext"`
	UseAI             *bool    `json:"useAI"`
}

func (g generateRequest) draft() service.DraftRequest {
	return service.DraftRequest{
		Name:       g.Name,
		Company:    g.Company,
		Tone:       g.Tone,
		Objective:  g.Objective,
		Highlights: g.Highlights,
		Context:    g.AdditionalContext,
	}
}

// HandleGenerate writes and saves a draft. useAI defaults to true.
// POST /api/messages/generate
func (h *MessageHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	var req generateRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	useAI := req.UseAI == nil || *req.UseAI

	msg, err := h.messages.Generate(r.Context(), claim.UserID, req.draft(), useAI)
	if err != nil {
		writeServiceError(w, err, "generate message")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": toMessageDTO(msg)})
}

// HandlePreview renders a template draft without saving or authenticating.
// POST /api/generate
// Response: {"ok":true,"message":"..."}
func (h *MessageHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	draft, err := h.messages.Preview(r.Context(), req.draft())
	if err != nil {
		writeServiceError(w, err, "preview message")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": draft.Content})
}

// HandleList returns a page of the caller's messages.
// GET /api/messages?limit=50&offset=0
func (h *MessageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	messages, err := h.messages.List(r.Context(), claim.UserID, limit, offset)
	if err != nil {
		writeServiceError(w, err, "list messages")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"messages": toMessageDTOs(messages), "count": len(messages)})
}

// HandleStats counts the caller's messages by origin.
// GET /api/messages/stats
func (h *MessageHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	stats, err := h.messages.Stats(r.Context(), claim.UserID)
	if err != nil {
		writeServiceError(w, err, "message stats")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"stats": StatsDTO{Total: stats.Total, AI: stats.AI, Template: stats.Template}})
}

// HandleSearch finds the caller's messages by content or objective.
// GET /api/messages/search?q=term&limit=20
func (h *MessageHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	term := r.URL.Query().Get("q")

	messages, err := h.messages.Search(r.Context(), claim.UserID, term, queryInt(r, "limit"))
	if err != nil {
		writeServiceError(w, err, "search messages")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"messages": toMessageDTOs(messages), "count": len(messages), "searchTerm": term})
}

// HandleGet returns one message.
// GET /api/messages/{id}
func (h *MessageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	msg, err := h.messages.Get(r.Context(), claim.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "get message")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": toMessageDTO(msg)})
}

// HandleUpdate edits a message. Absent fields are left unchanged.
// PUT /api/messages/{id}
func (h *MessageHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	var req struct {
		Content   *string `json:"content"`
		Tone      *string `json:"tone"`
		Objective *string `json:"objective"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	msg, err := h.messages.Update(r.Context(), claim.UserID, r.PathValue("id"), service.MessageUpdate{
		Content:   req.Content,
		Tone:      req.Tone,
		Objective: req.Objective,
	})
	if err != nil {
		writeServiceError(w, err, "update message")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"message": toMessageDTO(msg)})
}

// HandleDelete removes a message.
// DELETE /api/messages/{id}
func (h *MessageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	id := r.PathValue("id")
	if err := h.messages.Delete(r.Context(), claim.UserID, id); err != nil {
		writeServiceError(w, err, "delete message")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"messageId": id})
}

// HandleSendEmail records a simulated send of a draft.
// POST /api/messages/send-email
// Request: {"contactName":"...","company":"...","content":"...","tone":"...","objective":"..."}
func (h *MessageHandler) HandleSendEmail(w http.ResponseWriter, r *http.Request) {
	claim := ClaimFromContext(r.Context())
	var req struct {
		ContactName string `json:"contactName"`
		Company     string `json:"company"`
		Content     string `json:"content"`
		Tone        string `json:"tone"`
		Objective   string `json:"objective"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	msg, err := h.messages.SaveSent(r.Context(), claim.UserID, claim.Email, service.SentDraft{
		ContactName: req.ContactName,
		Company:     req.Company,
		Content:     req.Content,
		Tone:        req.Tone,
		Objective:   req.Objective,
	})
	if err != nil {
		writeServiceError(w, err, "send email")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{
		"messageId": msg.ID,
		"emailSent": true,
		"simulated": true,
		"sentTo":    req.ContactName,
	})
}

// queryInt parses a non-negative integer query parameter, returning 0 when
// absent or malformed.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
