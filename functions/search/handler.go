package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch"
	"github.com/letmevibethatforyou/globalsearch/inmemory"
	"github.com/letmevibethatforyou/globalsearch/internal/httpapi"
	"github.com/letmevibethatforyou/globalsearch/session"
)

// Handler answers API Gateway search requests. Every invocation loads the
// collections afresh; nothing is kept between invocations.
type Handler struct {
	source globalsearch.Source
	opts   []globalsearch.SearchOption
}

// NewHandler returns a Handler reading from source.
func NewHandler(source globalsearch.Source, opts ...globalsearch.SearchOption) *Handler {
	return &Handler{source: source, opts: opts}
}

// HandleRequest serves GET ?q=&limit=.
func (h *Handler) HandleRequest(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	query := req.QueryStringParameters["q"]

	opts := append([]globalsearch.SearchOption(nil), h.opts...)
	if raw := req.QueryStringParameters["limit"]; raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return jsonResponse(http.StatusBadRequest, httpapi.ErrorResponse{Error: "limit must be an integer", Code: "INVALID_LIMIT"})
		}
		opts = append(opts, globalsearch.WithLimit(limit))
	}

	idx := inmemory.New()
	if err := session.NewLoader(h.source, idx).Load(ctx); err != nil {
		slog.WarnContext(ctx, "some collections failed to load", "error", err)
	}

	results, err := idx.Search(ctx, query, opts...)
	if err != nil {
		if errors.Is(err, globalsearch.ErrInvalidOption) {
			return jsonResponse(http.StatusBadRequest, httpapi.ErrorResponse{Error: err.Error(), Code: "INVALID_OPTION"})
		}
		slog.ErrorContext(ctx, "search failed", "query", query, "error", err)
		return jsonResponse(http.StatusInternalServerError, httpapi.ErrorResponse{Error: "search failed", Code: "SEARCH_FAILED"})
	}

	resp, err := httpapi.NewSearchResponse(results)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}

	slog.InfoContext(ctx, "search completed", "query", query, "results", len(resp.Results), "total", resp.Total)
	return jsonResponse(http.StatusOK, resp)
}

func jsonResponse(status int, body any) (events.APIGatewayV2HTTPResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, errors.Wrap(err, "failed to marshal response")
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}, nil
}
