// Package view renders the HTML pages and Datastar fragments. Components
// live in the .templ files; run `templ generate` after editing them.
package view

import (
	"fmt"
	"strings"

	"github.com/msomdec/outreach/internal/domain"
)

// AppPageData is everything shown in the signed-in workspace.
type AppPageData struct {
	Email     string
	AIEnabled bool
	Stats     domain.MessageStats
	Contacts  []domain.Contact
	Messages  []domain.Message
}

func statsLine(s domain.MessageStats) string {
	return fmt.Sprintf("%d total, %d AI, %d template", s.Total, s.AI, s.Template)
}

func sourceLabel(generatedBy string) string {
	if generatedBy == domain.GeneratedByAI {
		return "AI"
	}
	return "Template"
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
