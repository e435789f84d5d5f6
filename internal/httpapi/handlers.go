package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/letmevibethatforyou/globalsearch"
	"github.com/letmevibethatforyou/globalsearch/inmemory"
)

// Index is the searchable, status-reporting record store behind the API.
type Index interface {
	globalsearch.Searcher
	Status(c globalsearch.Category) inmemory.Status
	Size() int
}

// Reloader refetches every collection into the index.
type Reloader interface {
	Load(ctx context.Context) error
}

// Handler contains HTTP handlers for the API.
type Handler struct {
	index  Index
	loader Reloader
	opts   []globalsearch.SearchOption
	logger *slog.Logger
}

// NewHandler creates a new HTTP handler. opts apply to every search before
// any per-request limit.
func NewHandler(index Index, loader Reloader, logger *slog.Logger, opts ...globalsearch.SearchOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		index:  index,
		loader: loader,
		opts:   opts,
		logger: logger,
	}
}

// Mount registers the routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.HandleSearch)
		r.Post("/route", h.HandleRoute)
		r.Post("/reload", h.HandleReload)
		r.Get("/status", h.HandleStatus)
	})
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleSearch ranks entries for ?q=, optionally capped by ?limit=.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	opts := append([]globalsearch.SearchOption(nil), h.opts...)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer", "INVALID_LIMIT")
			return
		}
		opts = append(opts, globalsearch.WithLimit(limit))
	}

	results, err := h.index.Search(r.Context(), query, opts...)
	if err != nil {
		switch {
		case errors.Is(err, globalsearch.ErrInvalidOption):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_OPTION")
		case errors.Is(err, globalsearch.ErrCanceled):
			writeError(w, http.StatusServiceUnavailable, "search canceled", "CANCELED")
		default:
			h.logger.ErrorContext(r.Context(), "search failed", "query", query, "error", err)
			writeError(w, http.StatusInternalServerError, "search failed", "SEARCH_FAILED")
		}
		return
	}

	resp, err := NewSearchResponse(results)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to route results", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to route results", "ROUTE_FAILED")
		return
	}

	h.logger.InfoContext(r.Context(), "search completed",
		"query", query,
		"results", len(resp.Results),
		"total", resp.Total,
	)
	writeJSON(w, http.StatusOK, resp)
}

// HandleRoute returns the dashboard path for a selected entry.
func (h *Handler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "invalid route request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required", "MISSING_ID")
		return
	}

	path, err := globalsearch.Route(globalsearch.Entry{Category: req.Category, ID: req.ID})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_CATEGORY")
		return
	}
	writeJSON(w, http.StatusOK, RouteResponse{Path: path})
}

// HandleReload refetches every collection. Collections that fail are
// reported but the others stay searchable.
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	err := h.loader.Load(r.Context())
	resp := h.status()
	if err != nil {
		h.logger.WarnContext(r.Context(), "reload incomplete", "error", err)
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleStatus reports per-collection load status.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

func (h *Handler) status() StatusResponse {
	resp := StatusResponse{
		Collections: make(map[globalsearch.Category]string, len(globalsearch.Categories)),
		Records:     h.index.Size(),
	}
	for _, c := range globalsearch.Categories {
		resp.Collections[c] = h.index.Status(c).String()
	}
	return resp
}

// NewSearchResponse converts results into the API shape, attaching the
// navigation path of each entry.
func NewSearchResponse(results *globalsearch.Results) (SearchResponse, error) {
	resp := SearchResponse{
		Query:   results.Query,
		Results: make([]SearchResult, 0, len(results.Items)),
		Total:   results.Total,
		TookMs:  results.Took,
	}
	for _, item := range results.Items {
		path, err := globalsearch.Route(item.Entry)
		if err != nil {
			return SearchResponse{}, err
		}
		resp.Results = append(resp.Results, SearchResult{
			Category: item.Entry.Category,
			ID:       item.Entry.ID,
			Title:    item.Entry.Title,
			Subtitle: item.Entry.Subtitle,
			Score:    item.Score,
			Path:     path,
		})
	}
	return resp, nil
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
