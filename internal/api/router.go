package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gausby/mg-org-wiki/internal/entryservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *entryservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Entries. No DELETE: the wiki never deletes entries; removing a file
	// on disk is the user's call and the watcher picks it up.
	r.Get("/entries", h.ListEntries)
	r.Post("/entries", h.CreateEntry)
	r.Get("/entries/{topic}", h.GetEntry)
	r.Put("/entries/{topic}", h.UpdateEntry)
	r.Get("/entries/{topic}/backlinks", h.Backlinks)

	// Search and keyword inventory.
	r.Get("/search", h.Search)
	r.Get("/keywords", h.Keywords)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
