package handler

import (
	"net/http"

	"github.com/msomdec/outreach/internal/service"
)

// EmailHandler serves the outbound mail API.
type EmailHandler struct {
	emails *service.EmailService
}

// NewEmailHandler creates a new EmailHandler.
func NewEmailHandler(emails *service.EmailService) *EmailHandler {
	return &EmailHandler{emails: emails}
}

// HandleHealth reports which Gmail credentials are configured.
// GET /api/emails/health
func (h *EmailHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := h.emails.Status()
	writeOK(w, http.StatusOK, map[string]any{
		"gmailConfigured": st.GmailConfigured,
		"env": map[string]bool{
			"hasClientId":     st.HasClientID,
			"hasClientSecret": st.HasClientSecret,
			"hasRefreshToken": st.HasRefreshToken,
		},
	})
}

// HandleSend delivers a single email.
// POST /api/emails/send
// Request: {"to":"...","subject":"...","message":"..."}
func (h *EmailHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	h.send(w, r, service.Email{To: req.To, Subject: req.Subject, Body: req.Message})
}

// HandleSendBulk delivers one email from the bulk sending screen.
// POST /api/emails/send-bulk
// Request: {"recipientEmail":"...","recipientName":"...","subject":"...","message":"..."}
func (h *EmailHandler) HandleSendBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipientEmail string `json:"recipientEmail"`
		RecipientName  string `json:"recipientName"`
		Subject        string `json:"subject"`
		Message        string `json:"message"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	h.send(w, r, service.Email{To: req.RecipientEmail, Subject: req.Subject, Body: req.Message})
}

func (h *EmailHandler) send(w http.ResponseWriter, r *http.Request, email service.Email) {
	res, err := h.emails.Send(r.Context(), email)
	if err != nil {
		writeServiceError(w, err, "send email")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{
		"gmail": map[string]any{
			"messageId": res.MessageID,
			"threadId":  res.ThreadID,
		},
		"simulated": res.Simulated,
	})
}
