package httpapi

import "github.com/letmevibethatforyou/globalsearch"

// SearchResult is one ranked entry with its navigation target.
type SearchResult struct {
	Category globalsearch.Category `json:"category"`
	ID       string                `json:"id"`
	Title    string                `json:"title"`
	Subtitle string                `json:"subtitle,omitempty"`
	Score    float64               `json:"score"`
	Path     string                `json:"path"`
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Total   int64          `json:"total"`
	TookMs  int64          `json:"took_ms"`
}

// RouteRequest is the body of POST /api/route.
type RouteRequest struct {
	Category globalsearch.Category `json:"category"`
	ID       string                `json:"id"`
}

// RouteResponse carries the dashboard path for a selected entry.
type RouteResponse struct {
	Path string `json:"path"`
}

// StatusResponse reports per-collection load status.
type StatusResponse struct {
	Collections map[globalsearch.Category]string `json:"collections"`
	Records     int                              `json:"records"`
	Error       string                           `json:"error,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
