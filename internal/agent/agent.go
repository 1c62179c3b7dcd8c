// Package agent runs the front-desk assistant: a chat-completion loop that lets the
// model call a fixed set of booking tools on behalf of the signed-in staff member.
//
// Bookings follow a draft-then-confirm protocol. draft_reservation only stores a
// priced AgentDraft; confirm_reservation executes it once, for the same staff member
// and hotel, before the draft expires.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/provider"
	"github.com/tjfontaine/innkeeper/internal/ratelimit"
	"github.com/tjfontaine/innkeeper/internal/tenant"
	"github.com/tjfontaine/innkeeper/internal/tokens"
)

const (
	DefaultMaxSteps           = 6
	DefaultHistoryTokenBudget = 6000

	// DefaultSystemPrompt states the booking protocol the tools enforce.
	DefaultSystemPrompt = `You are the front-desk assistant of a hotel property-management system.
Use the tools to check availability, find guests, look up reservations and report analytics.
To book a room, call draft_reservation and show the user the summary it returns. Call
confirm_reservation only after the user explicitly approves that draft. Never invent room ids,
guest ids or prices; take them from tool results. Amounts are in minor currency units.
Answer briefly.`
)

const exhaustedReply = "I could not finish that request within the allowed number of steps. Please try again with more detail."

// Settings are the hot-reloadable model parameters.
type Settings struct {
	Model              string
	Temperature        *float32
	MaxTokens          int
	SystemPrompt       string
	MaxSteps           int
	HistoryTokenBudget int
}

func (s Settings) withDefaults() Settings {
	if s.SystemPrompt == "" {
		s.SystemPrompt = DefaultSystemPrompt
	}
	if s.MaxSteps <= 0 {
		s.MaxSteps = DefaultMaxSteps
	}
	if s.HistoryTokenBudget <= 0 {
		s.HistoryTokenBudget = DefaultHistoryTokenBudget
	}
	return s
}

// ToolCall summarises one tool call made while answering.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Error     string `json:"error,omitempty"`
}

// Reply is the outcome of one chat request.
type Reply struct {
	ConversationID string             `json:"conversation_id"`
	Message        string             `json:"message"`
	ToolCalls      []ToolCall         `json:"tool_calls"`
	Draft          *domain.AgentDraft `json:"draft,omitempty"`
	Usage          provider.Usage     `json:"usage"`
}

// Agent answers staff messages with a ChatModel and the tool registry.
type Agent struct {
	model    provider.ChatModel
	backend  Backend
	tools    *Registry
	counter  tokens.Counter
	limiter  ratelimit.Limiter
	settings atomic.Pointer[Settings]
	now      func() time.Time
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures an Agent.
type Option func(*Agent)

// WithTools replaces the default tool set.
func WithTools(r *Registry) Option {
	return func(a *Agent) { a.tools = r }
}

// WithCounter sets the token counter used to trim history.
func WithCounter(c tokens.Counter) Option {
	return func(a *Agent) { a.counter = c }
}

// WithLimiter rate-limits chat requests per staff member.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(a *Agent) { a.limiter = l }
}

func WithSettings(s Settings) Option {
	return func(a *Agent) { a.UpdateSettings(s) }
}

func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// New creates an Agent.
func New(model provider.ChatModel, backend Backend, opts ...Option) *Agent {
	a := &Agent{
		model:   model,
		backend: backend,
		now:     time.Now,
		logger:  slog.Default(),
		tracer:  otel.Tracer("github.com/tjfontaine/innkeeper/internal/agent"),
	}
	a.settings.Store(&Settings{})
	for _, opt := range opts {
		opt(a)
	}
	if a.tools == nil {
		a.tools = NewRegistry(DefaultTools(backend)...)
	}
	if a.counter == nil {
		a.counter = tokens.NewTiktoken()
	}
	return a
}

// UpdateSettings swaps the model parameters for subsequent requests.
func (a *Agent) UpdateSettings(s Settings) {
	s = s.withDefaults()
	a.settings.Store(&s)
}

func (a *Agent) Settings() Settings {
	return a.settings.Load().withDefaults()
}

// Tools returns the registry the agent dispatches to.
func (a *Agent) Tools() *Registry {
	return a.tools
}

func (a *Agent) allow(ctx context.Context, sc tenant.Scope) error {
	if a.limiter == nil {
		return nil
	}
	res, err := a.limiter.Allow(ctx, "agent:"+sc.StaffID)
	if err != nil {
		a.logger.Warn("rate limiter unavailable", slog.String("error", err.Error()))
		return nil
	}
	if !res.Allowed {
		wait := res.RetryAfter(a.now()).Round(time.Second)
		return domain.ErrRateLimit(fmt.Sprintf("too many assistant requests; try again in %s", wait))
	}
	return nil
}

// Chat handles one staff message. An empty conversationID starts a new conversation.
// Every user, assistant and tool message is persisted as it is produced.
func (a *Agent) Chat(ctx context.Context, sc tenant.Scope, conversationID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrInvalidRequest("message is required").WithParam("message")
	}
	if err := sc.RequireHotel(); err != nil {
		return nil, err
	}
	if err := sc.Require(domain.PermAgentUse); err != nil {
		return nil, err
	}
	if err := a.allow(ctx, sc); err != nil {
		return nil, err
	}

	var history []domain.ChatMessage
	if conversationID == "" {
		conv, err := a.backend.StartConversation(ctx, sc, message)
		if err != nil {
			return nil, err
		}
		conversationID = conv.ID
	} else {
		conv, err := a.backend.GetConversation(ctx, sc, conversationID)
		if err != nil {
			return nil, err
		}
		history = conv.Messages
	}

	ctx, span := a.tracer.Start(ctx, "agent.chat", trace.WithAttributes(
		attribute.String("hotel.id", sc.HotelID),
		attribute.String("staff.id", sc.StaffID),
		attribute.String("conversation.id", conversationID),
	))
	defer span.End()

	reply, err := a.run(ctx, sc, conversationID, history, message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("agent.tool_calls", len(reply.ToolCalls)),
		attribute.Int("agent.total_tokens", reply.Usage.TotalTokens),
	)
	return reply, nil
}

func (a *Agent) run(ctx context.Context, sc tenant.Scope, conversationID string, history []domain.ChatMessage, message string) (*Reply, error) {
	settings := a.Settings()
	system, err := a.systemPrompt(ctx, sc, settings.SystemPrompt)
	if err != nil {
		return nil, err
	}

	user := domain.ChatMessage{Role: domain.ChatRoleUser, Content: message}
	if err := a.backend.AppendMessages(ctx, sc, conversationID, user); err != nil {
		return nil, err
	}
	history = append(history, user)

	reply := &Reply{ConversationID: conversationID, ToolCalls: []ToolCall{}}
	inv := Invocation{Scope: sc, ConversationID: conversationID}

	for step := 0; step < settings.MaxSteps; step++ {
		window, err := tokens.Trim(a.counter, settings.Model, history, settings.HistoryTokenBudget)
		if err != nil {
			return nil, fmt.Errorf("failed to trim history: %w", err)
		}

		resp, err := a.complete(ctx, step, &provider.Request{
			Model:       settings.Model,
			System:      system,
			Messages:    window,
			Tools:       a.tools.Specs(),
			Temperature: settings.Temperature,
			MaxTokens:   settings.MaxTokens,
			User:        sc.StaffID,
		})
		if err != nil {
			return nil, err
		}
		reply.Usage.PromptTokens += resp.Usage.PromptTokens
		reply.Usage.CompletionTokens += resp.Usage.CompletionTokens
		reply.Usage.TotalTokens += resp.Usage.TotalTokens

		assistant := resp.Message
		assistant.Role = domain.ChatRoleAssistant
		if err := a.backend.AppendMessages(ctx, sc, conversationID, assistant); err != nil {
			return nil, err
		}
		history = append(history, assistant)

		if len(assistant.ToolCalls) == 0 {
			reply.Message = assistant.Content
			return reply, nil
		}

		results := make([]domain.ChatMessage, 0, len(assistant.ToolCalls))
		for _, call := range assistant.ToolCalls {
			out := a.callTool(ctx, inv, call)
			summary := ToolCall{Name: call.Name, Arguments: call.Arguments}
			if out.Err != nil {
				summary.Error = domain.AsAPIError(out.Err).Message
			}
			reply.ToolCalls = append(reply.ToolCalls, summary)

			switch r := out.Result.(type) {
			case *draftResult:
				reply.Draft = r.draft
			case *confirmResult:
				if reply.Draft != nil && reply.Draft.ID == r.draftID {
					reply.Draft = nil
				}
			}

			results = append(results, domain.ChatMessage{
				Role:       domain.ChatRoleTool,
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    out.Content,
			})
		}
		if err := a.backend.AppendMessages(ctx, sc, conversationID, results...); err != nil {
			return nil, err
		}
		history = append(history, results...)
	}

	a.logger.Warn("agent step limit reached",
		slog.String("conversation_id", conversationID),
		slog.Int("max_steps", settings.MaxSteps))
	final := domain.ChatMessage{Role: domain.ChatRoleAssistant, Content: exhaustedReply}
	if err := a.backend.AppendMessages(ctx, sc, conversationID, final); err != nil {
		return nil, err
	}
	reply.Message = exhaustedReply
	return reply, nil
}

func (a *Agent) complete(ctx context.Context, step int, req *provider.Request) (*provider.Response, error) {
	ctx, span := a.tracer.Start(ctx, "agent.turn", trace.WithAttributes(
		attribute.String("llm.provider", a.model.Name()),
		attribute.String("llm.model", req.Model),
		attribute.Int("agent.step", step),
		attribute.Int("llm.messages", len(req.Messages)),
	))
	defer span.End()

	start := a.now()
	resp, err := a.model.Complete(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Error("assistant model request failed",
			slog.String("provider", a.model.Name()),
			slog.String("error", err.Error()))
		return nil, err
	}
	span.SetAttributes(
		attribute.String("llm.finish_reason", resp.FinishReason),
		attribute.Int("llm.total_tokens", resp.Usage.TotalTokens),
	)
	a.logger.Debug("assistant turn",
		slog.Int("step", step),
		slog.Int("tool_calls", len(resp.Message.ToolCalls)),
		slog.Duration("duration", a.now().Sub(start)))
	return resp, nil
}

func (a *Agent) callTool(ctx context.Context, inv Invocation, call domain.ToolCallRecord) Outcome {
	ctx, span := a.tracer.Start(ctx, "agent.tool", trace.WithAttributes(
		attribute.String("tool.name", call.Name),
		attribute.String("tool.call_id", call.ID),
	))
	defer span.End()

	out := a.tools.Dispatch(ctx, inv, call)
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
		a.logger.Info("tool call failed",
			slog.String("tool", call.Name),
			slog.String("error", out.Err.Error()))
	}
	return out
}

// systemPrompt appends the hotel context the model needs to resolve relative dates.
func (a *Agent) systemPrompt(ctx context.Context, sc tenant.Scope, base string) (string, error) {
	h, err := a.backend.GetHotel(ctx, sc, sc.HotelID)
	if err != nil {
		return "", err
	}
	today := domain.DateOf(a.now().In(h.Location()))
	return fmt.Sprintf("%s\n\nHotel: %s. Currency: %s. Today is %s (%s). Check-in from %s, check-out by %s.",
		base, h.Name, h.Currency, today, today.Weekday(), h.CheckInTime, h.CheckOutTime), nil
}
