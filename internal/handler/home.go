package handler

import (
	"net/http"

	"github.com/msomdec/outreach/internal/view"
)

// HandleHome renders the landing page. The catch-all pattern makes any
// other unmatched path a 404.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	email := ""
	if claim := ClaimFromContext(r.Context()); claim != nil {
		email = claim.Email
	}
	view.HomePage(email).Render(r.Context(), w)
}
