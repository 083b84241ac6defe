package prompt

import (
	"encoding/json"
	"fmt"

	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/llm"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior UX research analyst. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- answer is a concise, actionable assessment of the user's question.
- When tracked_data is provided, ground the answer in those interaction records.
- When vision results are provided, reference the detected screen type and elements.
- sources may be empty when no supporting material was given.

Schema (example with empty values):
{
  "answer": "<string>",
  "sources": ["<string>"]
}`
}

// GetUserPrompt serializes the assembled payload into a single user message.
func GetUserPrompt(payload domain.QueryPayload) string {
	msg := fmt.Sprintf("Question: %s", payload.Question)
	if len(payload.TrackedData) > 0 {
		if b, err := json.Marshal(payload.TrackedData); err == nil {
			msg += fmt.Sprintf("\n\nTracked interaction data (%d points): %s", len(payload.TrackedData), b)
		}
	}
	if len(payload.Vision) > 0 {
		if b, err := json.Marshal(payload.Vision); err == nil {
			msg += fmt.Sprintf("\n\nVision analysis results: %s", b)
		}
	}
	return msg
}
