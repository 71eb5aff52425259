package handler

import (
	"net/http"

	"github.com/msomdec/outreach/internal/repository"
)

// HandleHealthz responds with 200 and the storage backends chosen at startup.
func HandleHealthz(store repository.Set) http.HandlerFunc {
	body := map[string]any{
		"status":      "ok",
		"backend":     string(store.Backend),
		"userBackend": string(store.UserBackend),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}
