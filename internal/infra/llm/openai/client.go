package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/llm"
	"github.com/bryanwahyu/uxinsight-gateway/internal/infra/llm/prompt"
)

const maxTokens = 2048

// Client memanggil OpenAI langsung, dipakai kalau query service tidak di-deploy.
// Implementasi llm.Client yang sama dengan client HTTP biasa.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) Query(ctx context.Context, payload domain.QueryPayload) (domain.QueryResult, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(payload)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	content := resp.Choices[0].Message.Content

	// model diminta balikin object {"answer": ...}; kalau tidak, pakai teks mentah
	var parsed struct {
		Answer string `json:"answer"`
	}
	answer := content
	if err := json.Unmarshal([]byte(content), &parsed); err == nil && parsed.Answer != "" {
		answer = parsed.Answer
	}

	raw, err := json.Marshal(map[string]string{"answer": answer})
	if err != nil {
		return domain.QueryResult{}, err
	}
	return domain.QueryResult{Answer: answer, Raw: raw}, nil
}
