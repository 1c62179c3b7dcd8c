// Package gemini implements the agent's chat model on Google's Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/provider"
)

// ProviderType is the provider type identifier used in configuration.
const ProviderType = "gemini"

// ProviderOption configures the provider.
type ProviderOption func(*genai.ClientConfig)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(baseURL string) ProviderOption {
	return func(c *genai.ClientConfig) {
		c.HTTPOptions.BaseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ProviderOption {
	return func(c *genai.ClientConfig) {
		c.HTTPClient = httpClient
	}
}

// Provider implements provider.ChatModel with generateContent function calling.
type Provider struct {
	client *genai.Client
}

// New creates a Gemini provider.
func New(ctx context.Context, apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Name() string {
	return ProviderType
}

func (p *Provider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	contents, err := toContents(req.Messages)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, toConfig(req))
	if err != nil {
		return nil, canonicalError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, domain.ErrUnavailable("assistant model returned no candidates")
	}
	return toResponse(req.Model, resp), nil
}

func toConfig(req *provider.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{Temperature: req.Temperature}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: t.Parameters,
			}
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return cfg
}

// toContents maps chat history onto Gemini turns. Tool results travel as function
// responses in a user turn; consecutive results share one turn.
func toContents(msgs []domain.ChatMessage) ([]*genai.Content, error) {
	var contents []*genai.Content
	for _, m := range msgs {
		switch m.Role {
		case domain.ChatRoleUser:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleUser),
				Parts: []*genai.Part{{Text: m.Content}},
			})

		case domain.ChatRoleAssistant:
			c := &genai.Content{Role: string(genai.RoleModel)}
			if m.Content != "" {
				c.Parts = append(c.Parts, &genai.Part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				args := map[string]any{}
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, fmt.Errorf("tool call %s has invalid arguments: %w", tc.ID, err)
					}
				}
				c.Parts = append(c.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args}})
			}
			if len(c.Parts) > 0 {
				contents = append(contents, c)
			}

		case domain.ChatRoleTool:
			part := &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       m.ToolCallID,
				Name:     m.Name,
				Response: resultMap(m.Content),
			}}
			if n := len(contents); n > 0 && isFunctionResponses(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: string(genai.RoleUser), Parts: []*genai.Part{part}})
		}
	}
	return contents, nil
}

func isFunctionResponses(c *genai.Content) bool {
	if c.Role != string(genai.RoleUser) || len(c.Parts) == 0 {
		return false
	}
	for _, p := range c.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return true
}

// resultMap decodes a JSON object tool result, wrapping anything else.
func resultMap(content string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(content), &out); err == nil && out != nil {
		return out
	}
	return map[string]any{"result": content}
}

func toResponse(model string, resp *genai.GenerateContentResponse) *provider.Response {
	cand := resp.Candidates[0]
	msg := domain.ChatMessage{Role: domain.ChatRoleAssistant}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			args, _ := json.Marshal(part.FunctionCall.Args)
			id := part.FunctionCall.ID
			if id == "" {
				id = "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")
			}
			msg.ToolCalls = append(msg.ToolCalls, domain.ToolCallRecord{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		case part.Text != "" && !part.Thought:
			text.WriteString(part.Text)
		}
	}
	msg.Content = text.String()

	out := &provider.Response{
		Model:        model,
		Message:      msg,
		FinishReason: strings.ToLower(string(cand.FinishReason)),
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if len(msg.ToolCalls) > 0 {
		out.FinishReason = "tool_calls"
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = provider.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out
}

func canonicalError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "429") {
		return domain.ErrRateLimit("assistant model error: " + msg)
	}
	return domain.ErrUnavailable("assistant model error: " + msg)
}
