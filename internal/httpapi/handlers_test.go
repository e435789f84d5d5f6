package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/letmevibethatforyou/globalsearch"
	"github.com/letmevibethatforyou/globalsearch/inmemory"
	"github.com/letmevibethatforyou/globalsearch/session"
)

// flakySource fails the orders collection.
type flakySource struct {
	globalsearch.StaticSource
}

func (s *flakySource) Orders(context.Context) ([]globalsearch.Order, error) {
	return nil, errors.New("orders table unavailable")
}

func testSource() *globalsearch.StaticSource {
	return &globalsearch.StaticSource{
		Items: []globalsearch.CatalogItem{
			{ID: "p1", Title: "Red Hoodie", Slug: "red-hoodie", Brand: "On3"},
			{ID: "p2", Title: "Blue Hoodie", Slug: "blue-hoodie"},
		},
		OrderList: []globalsearch.Order{
			{ID: "3f2a9c1e-0000-0000-0000-000000000001", Customer: &globalsearch.Customer{Email: "hoodie@example.com"}},
		},
		Users: []globalsearch.Account{
			{ID: "u1", Email: "a@x.com"},
		},
	}
}

func setupTestRouter(t *testing.T, src globalsearch.Source, load bool) chi.Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	idx := inmemory.New()
	loader := session.NewLoader(src, idx, session.WithLoaderLogger(logger))
	if load {
		if err := loader.Load(context.Background()); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	r := chi.NewRouter()
	NewHandler(idx, loader, logger).Mount(r)
	return r
}

func doRequest(t *testing.T, r http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	w := doRequest(t, setupTestRouter(t, testSource(), false), http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	router := setupTestRouter(t, testSource(), true)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantIDs    []string
		wantTotal  int64
	}{
		{
			name:       "typo",
			target:     "/api/search?q=hodie",
			wantStatus: http.StatusOK,
			wantIDs:    []string{"p1", "p2", "3f2a9c1e-0000-0000-0000-000000000001"},
			wantTotal:  3,
		},
		{
			name:       "limit",
			target:     "/api/search?q=hoodie&limit=1",
			wantStatus: http.StatusOK,
			wantIDs:    []string{"p1"},
			wantTotal:  3,
		},
		{
			name:       "short query",
			target:     "/api/search?q=h",
			wantStatus: http.StatusOK,
			wantIDs:    []string{},
		},
		{
			name:       "account email",
			target:     "/api/search?q=a%40x",
			wantStatus: http.StatusOK,
			wantIDs:    []string{"u1"},
			wantTotal:  1,
		},
		{name: "bad limit", target: "/api/search?q=hoodie&limit=x", wantStatus: http.StatusBadRequest},
		{name: "zero limit", target: "/api/search?q=hoodie&limit=0", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodGet, tt.target, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				var resp ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Code == "" {
					t.Errorf("expected error body, got %s", w.Body.String())
				}
				return
			}

			var resp SearchResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Results == nil {
				t.Fatal("expected results array, got null")
			}
			if len(resp.Results) != len(tt.wantIDs) {
				t.Fatalf("expected %d results, got %+v", len(tt.wantIDs), resp.Results)
			}
			for i, id := range tt.wantIDs {
				if resp.Results[i].ID != id {
					t.Errorf("result %d: expected %s, got %s", i, id, resp.Results[i].ID)
				}
			}
			if resp.Total != tt.wantTotal {
				t.Errorf("expected total %d, got %d", tt.wantTotal, resp.Total)
			}
		})
	}
}

func TestHandleSearchPaths(t *testing.T) {
	router := setupTestRouter(t, testSource(), true)
	w := doRequest(t, router, http.MethodGet, "/api/search?q=hodie", nil)

	var resp SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	first := resp.Results[0]
	if first.Title != "Red Hoodie" || first.Subtitle != "On3" || first.Path != "/admin/products/p1" {
		t.Errorf("unexpected first result %+v", first)
	}
	last := resp.Results[len(resp.Results)-1]
	if last.Category != globalsearch.CategoryOrder || last.Path != "/admin/orders" || last.Title != "Order 3f2a9c1e" {
		t.Errorf("unexpected order result %+v", last)
	}
}

func TestHandleRoute(t *testing.T) {
	router := setupTestRouter(t, testSource(), false)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantPath   string
	}{
		{"catalog item", `{"category":"catalog_item","id":"p1"}`, http.StatusOK, "/admin/products/p1"},
		{"order", `{"category":"order","id":"o1"}`, http.StatusOK, "/admin/orders"},
		{"account", `{"category":"account","id":"u1"}`, http.StatusOK, "/admin/users"},
		{"unknown category", `{"category":"coupon","id":"c1"}`, http.StatusBadRequest, ""},
		{"missing id", `{"category":"order"}`, http.StatusBadRequest, ""},
		{"invalid json", `{`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/route", []byte(tt.body))
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantPath == "" {
				return
			}
			var resp RouteResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Path != tt.wantPath {
				t.Errorf("expected path %s, got %s", tt.wantPath, resp.Path)
			}
		})
	}
}

func TestHandleStatusAndReload(t *testing.T) {
	router := setupTestRouter(t, testSource(), false)

	w := doRequest(t, router, http.MethodGet, "/api/status", nil)
	var before StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&before); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if before.Collections[globalsearch.CategoryCatalogItem] != "not_loaded" || before.Records != 0 {
		t.Errorf("unexpected status before load %+v", before)
	}

	w = doRequest(t, router, http.MethodPost, "/api/reload", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var after StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&after); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, c := range globalsearch.Categories {
		if after.Collections[c] != "loaded" {
			t.Errorf("expected %s loaded, got %s", c, after.Collections[c])
		}
	}
	if after.Records != 4 {
		t.Errorf("expected 4 records, got %d", after.Records)
	}
}

func TestHandleReloadPartialFailure(t *testing.T) {
	router := setupTestRouter(t, &flakySource{StaticSource: *testSource()}, false)

	w := doRequest(t, router, http.MethodPost, "/api/reload", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", w.Code)
	}
	var resp StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Collections[globalsearch.CategoryOrder] != "failed" || resp.Collections[globalsearch.CategoryAccount] != "loaded" {
		t.Errorf("unexpected collections %+v", resp.Collections)
	}
	if resp.Error == "" {
		t.Error("expected error message")
	}

	// The loaded collections stay searchable.
	w = doRequest(t, router, http.MethodGet, "/api/search?q=hoodie", nil)
	var search SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&search); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(search.Results) != 2 {
		t.Errorf("expected 2 catalog results, got %+v", search.Results)
	}
}
