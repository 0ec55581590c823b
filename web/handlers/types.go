package handlers

import (
	"context"

	"github.com/ritualgrammar/navigator/internal/engine"
	"github.com/ritualgrammar/navigator/internal/storage"
	"github.com/ritualgrammar/navigator/pkg/types"
)

// Navigator is the read side the handlers serve from.
type Navigator interface {
	NavigationTree(ctx context.Context, inferred bool) (*engine.TreeView, error)
	EventTree(ctx context.Context) (*engine.TreeView, error)
	Details(ctx context.Context, id string, inferred bool) (*types.NodeDetails, error)
	Query(ctx context.Context, query string, inferred bool) *types.QueryResult
	QueryConfigured(inferred bool) bool
}

// StatusReporter exposes the load state of each store kind.
type StatusReporter interface {
	Status() map[storage.Kind]engine.StatusEvent
}

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// QueryRequest is the JSON body of POST /api/sparql.
type QueryRequest struct {
	Query    string `json:"query"`
	Inferred bool   `json:"inferred"`
}

// HealthResponse is the response format for GET /api/health.
type HealthResponse struct {
	Status  string                              `json:"status"`
	Version string                              `json:"version"`
	Stores  map[storage.Kind]engine.StatusEvent `json:"stores"`
}

// StatusMessage is pushed to websocket clients when a store changes state.
type StatusMessage struct {
	Type string             `json:"type"`
	Data engine.StatusEvent `json:"data"`
}
