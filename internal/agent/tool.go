package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/provider"
	"github.com/tjfontaine/innkeeper/internal/tenant"
)

// Invocation identifies who is calling a tool and from which conversation.
type Invocation struct {
	Scope          tenant.Scope
	ConversationID string
}

// Tool is a function the model may call. Call returns a JSON-serialisable result.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Call(ctx context.Context, inv Invocation, args json.RawMessage) (any, error)
}

// Registry dispatches tool calls by name, in registration order.
type Registry struct {
	tools []Tool
	index map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{index: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any tool with the same name.
func (r *Registry) Register(t Tool) {
	if _, ok := r.index[t.Name()]; ok {
		for i := range r.tools {
			if r.tools[i].Name() == t.Name() {
				r.tools[i] = t
			}
		}
	} else {
		r.tools = append(r.tools, t)
	}
	r.index[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.index[name]
	return t, ok
}

// Specs describes every tool for a model request.
func (r *Registry) Specs() []provider.ToolSpec {
	specs := make([]provider.ToolSpec, len(r.tools))
	for i, t := range r.tools {
		specs[i] = provider.ToolSpec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}
	return specs
}

// Outcome is the result of one dispatched call.
type Outcome struct {
	// Content is the JSON handed back to the model.
	Content string
	Result  any
	Err     error
}

// Dispatch runs a tool call. Unknown tools and tool failures become error content
// for the model rather than failing the turn.
func (r *Registry) Dispatch(ctx context.Context, inv Invocation, call domain.ToolCallRecord) Outcome {
	t, ok := r.index[call.Name]
	if !ok {
		err := domain.ErrInvalidRequest(fmt.Sprintf("unknown tool %q", call.Name))
		return Outcome{Content: errorContent(err), Err: err}
	}

	args := json.RawMessage(call.Arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	result, err := t.Call(ctx, inv, args)
	if err != nil {
		return Outcome{Content: errorContent(err), Err: err}
	}

	data, err := json.Marshal(result)
	if err != nil {
		err = fmt.Errorf("failed to encode %s result: %w", call.Name, err)
		return Outcome{Content: errorContent(err), Err: err}
	}
	return Outcome{Content: string(data), Result: result}
}

func errorContent(err error) string {
	apiErr := domain.AsAPIError(err)
	data, _ := json.Marshal(map[string]any{
		"error": map[string]any{
			"type":    apiErr.Type,
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
	return string(data)
}

// decodeArgs unmarshals tool arguments, reporting malformed input to the model.
func decodeArgs(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return domain.ErrInvalidRequest("invalid arguments: " + err.Error())
	}
	return nil
}
