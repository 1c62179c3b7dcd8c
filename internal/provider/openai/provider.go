package openai

import (
	"context"
	"errors"
	"net/http"

	openaiapi "github.com/tjfontaine/innkeeper/internal/api/openai"
	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/provider"
)

// ProviderOption configures the provider.
type ProviderOption func(*Provider)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = httpClient
	}
}

// Provider implements provider.ChatModel on the chat completions API.
type Provider struct {
	client     *openaiapi.Client
	baseURL    string
	httpClient *http.Client
}

// New creates a new OpenAI provider.
func New(apiKey string, opts ...ProviderOption) *Provider {
	p := &Provider{}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []openaiapi.ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, openaiapi.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, openaiapi.WithHTTPClient(p.httpClient))
	}

	p.client = openaiapi.NewClient(apiKey, clientOpts...)
	return p
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	resp, err := p.client.CreateChatCompletion(ctx, toAPIRequest(req), nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}
	return toResponse(resp), nil
}

// toAPIRequest converts a model request to an OpenAI API request. The system prompt
// becomes the leading system message.
func toAPIRequest(req *provider.Request) *openaiapi.ChatCompletionRequest {
	messages := make([]openaiapi.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openaiapi.ChatCompletionMessage{Role: domain.ChatRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		msg := openaiapi.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if m.Role != domain.ChatRoleTool {
			msg.Name = m.Name
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openaiapi.ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: openaiapi.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		messages = append(messages, msg)
	}

	apiReq := &openaiapi.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		User:        req.User,
	}

	if req.MaxTokens > 0 {
		// Newer models prefer max_completion_tokens
		apiReq.MaxCompletionTokens = req.MaxTokens
	}

	if len(req.Tools) > 0 {
		apiReq.Tools = make([]openaiapi.Tool, len(req.Tools))
		for i, t := range req.Tools {
			apiReq.Tools[i] = openaiapi.Tool{
				Type: "function",
				Function: openaiapi.FunctionTool{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			}
		}
		apiReq.ToolChoice = "auto"
	}

	return apiReq
}

// toResponse converts the first choice of an OpenAI API response.
func toResponse(resp *openaiapi.ChatCompletionResponse) *provider.Response {
	c := resp.Choices[0]
	msg := domain.ChatMessage{
		Role:    domain.ChatRoleAssistant,
		Content: c.Message.Content,
	}
	for _, tc := range c.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, domain.ToolCallRecord{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return &provider.Response{
		Model:        resp.Model,
		Message:      msg,
		FinishReason: c.FinishReason,
		Usage: provider.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
}
