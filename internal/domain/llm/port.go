package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable indicates the LLM backend could not be reached or returned a non-2xx status.
var ErrUnavailable = errors.New("llm service unavailable")

// QueryPayload request body untuk POST {base}/query
type QueryPayload struct {
	Question        string           `json:"question"`
	NumResults      int              `json:"num_results,omitempty"`
	IncludeMetadata bool             `json:"include_metadata,omitempty"`
	TrackedData     []map[string]any `json:"tracked_data,omitempty"`
	Vision          []map[string]any `json:"vision,omitempty"`
}

// QueryResult hasil dari LLM backend.
// Raw adalah body asli, diteruskan apa adanya ke caller; Answer diambil dari field "answer".
type QueryResult struct {
	Answer string
	Raw    json.RawMessage
}

// Client port untuk LLM backend
type Client interface {
	Query(ctx context.Context, payload QueryPayload) (QueryResult, error)
}
