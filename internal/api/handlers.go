package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gausby/mg-org-wiki/internal/apperr"
	"github.com/gausby/mg-org-wiki/internal/entryservice"
	"github.com/gausby/mg-org-wiki/internal/index"
)

// Handler holds API route handlers.
type Handler struct {
	svc *entryservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *entryservice.Service) *Handler {
	return &Handler{svc: svc}
}

// topicParam extracts the topic from the URL. Topics may contain spaces,
// so percent-encoded values are unescaped.
func topicParam(r *http.Request) string {
	raw := chi.URLParam(r, "topic")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListEntries handles GET /api/entries.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	keyword := q.Get("keyword")
	sort := q.Get("sort")

	items, total, err := h.svc.ListEntries(r.Context(), limit, offset, keyword, sort)
	if err != nil {
		slog.Error("list entries failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []EntryListItem{}
	}
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: items, Total: total})
}

// GetEntry handles GET /api/entries/{topic}.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	topic := topicParam(r)
	if topic == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("topic is required"))
		return
	}
	entry, err := h.svc.GetEntry(r.Context(), topic)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else if errors.Is(err, apperr.ErrInvalidTopic) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid topic"))
		} else {
			slog.Error("get entry failed", slog.String("topic", topic), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// CreateEntry handles POST /api/entries.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	entry, err := h.svc.CreateEntry(r.Context(), req.Topic, req.Keywords, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("already exists"))
		case errors.Is(err, apperr.ErrInvalidTopic):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid topic"))
		default:
			slog.Error("create entry failed", slog.String("topic", req.Topic), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// UpdateEntry handles PUT /api/entries/{topic}. The If-Match header carries
// the expected checksum for optimistic concurrency.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	topic := topicParam(r)
	if topic == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("topic is required"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	entry, err := h.svc.UpdateEntry(r.Context(), topic, []byte(req.Content), r.Header.Get("If-Match"))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrInvalidTopic):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid topic"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusPreconditionFailed, errorBody("checksum mismatch"))
		default:
			slog.Error("update entry failed", slog.String("topic", topic), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Backlinks handles GET /api/entries/{topic}/backlinks.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	topic := topicParam(r)
	if topic == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("topic is required"))
		return
	}
	bl, err := h.svc.Backlinks(r.Context(), topic)
	if err != nil {
		slog.Error("backlinks failed", slog.String("topic", topic), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if bl == nil {
		bl = []string{}
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Backlinks: bl})
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Path: hit.Path, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Keywords handles GET /api/keywords.
func (h *Handler) Keywords(w http.ResponseWriter, r *http.Request) {
	kws, err := h.svc.ListKeywords(r.Context())
	if err != nil {
		slog.Error("list keywords failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if kws == nil {
		kws = []index.KeywordCount{}
	}
	writeJSON(w, http.StatusOK, KeywordsResponse{Keywords: kws})
}
