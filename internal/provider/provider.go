// Package provider defines the chat-model port used by the front-desk agent and the
// factory registry that builds a model from configuration.
//
// # Adding a New Provider
//
// Implement ChatModel in a subpackage and expose an explicit registration function
// that calls RegisterFactory. Wire the registration from the runtime so that
// no provider is registered through init() side effects:
//
//	func RegisterProviderFactory() {
//	    if provider.IsRegistered(ProviderType) {
//	        return
//	    }
//	    provider.RegisterFactory(provider.Factory{
//	        Type:           ProviderType,
//	        Description:    "Google Gemini API provider",
//	        Create:         CreateFromConfig,
//	        ValidateConfig: ValidateConfig,
//	    })
//	}
package provider

import (
	"context"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

// ToolSpec describes a function the model may call. Parameters is a JSON schema object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Request is one model turn.
type Request struct {
	Model       string
	System      string
	Messages    []domain.ChatMessage
	Tools       []ToolSpec
	Temperature *float32
	MaxTokens   int
	// User is an opaque end-user id forwarded for abuse monitoring.
	User string
}

// Usage reports the tokens a turn consumed.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the model's reply to a Request. Message.Role is always assistant and
// Message.ToolCalls lists the functions the model wants run.
type Response struct {
	Model        string
	Message      domain.ChatMessage
	FinishReason string
	Usage        Usage
}

// ChatModel is a chat-completion backend with function calling.
type ChatModel interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}
