package gemini

import (
	"encoding/json"
	"testing"

	"google.golang.org/genai"

	"github.com/tjfontaine/innkeeper/internal/domain"
	"github.com/tjfontaine/innkeeper/internal/provider"
)

func TestToContents(t *testing.T) {
	msgs := []domain.ChatMessage{
		{Role: domain.ChatRoleSystem, Content: "ignored"},
		{Role: domain.ChatRoleUser, Content: "Is room 101 free?"},
		{Role: domain.ChatRoleAssistant, ToolCalls: []domain.ToolCallRecord{
			{ID: "c1", Name: "check_availability", Arguments: `{"check_in":"2025-03-04"}`},
			{ID: "c2", Name: "find_guest", Arguments: `{"query":"Ada"}`},
		}},
		{Role: domain.ChatRoleTool, ToolCallID: "c1", Name: "check_availability", Content: `{"rooms":[]}`},
		{Role: domain.ChatRoleTool, ToolCallID: "c2", Name: "find_guest", Content: "no guests found"},
		{Role: domain.ChatRoleAssistant, Content: "Nothing is free."},
	}

	contents, err := toContents(msgs)
	if err != nil {
		t.Fatalf("toContents() error = %v", err)
	}
	if len(contents) != 4 {
		t.Fatalf("len(contents) = %d, want 4", len(contents))
	}
	if contents[0].Role != "user" || contents[0].Parts[0].Text != "Is room 101 free?" {
		t.Errorf("contents[0] = %+v", contents[0])
	}

	calls := contents[1]
	if calls.Role != "model" || len(calls.Parts) != 2 {
		t.Fatalf("contents[1] = %+v", calls)
	}
	if got := calls.Parts[0].FunctionCall.Args["check_in"]; got != "2025-03-04" {
		t.Errorf("check_in arg = %v", got)
	}

	results := contents[2]
	if results.Role != "user" || len(results.Parts) != 2 {
		t.Fatalf("tool results should share one turn, got %+v", results)
	}
	if _, ok := results.Parts[0].FunctionResponse.Response["rooms"]; !ok {
		t.Errorf("object result not decoded: %v", results.Parts[0].FunctionResponse.Response)
	}
	if got := results.Parts[1].FunctionResponse.Response["result"]; got != "no guests found" {
		t.Errorf("text result = %v", got)
	}
	if contents[3].Parts[0].Text != "Nothing is free." {
		t.Errorf("contents[3] = %+v", contents[3])
	}
}

func TestToContentsRejectsBadArguments(t *testing.T) {
	_, err := toContents([]domain.ChatMessage{{
		Role:      domain.ChatRoleAssistant,
		ToolCalls: []domain.ToolCallRecord{{ID: "c1", Name: "x", Arguments: "{"}},
	}})
	if err == nil {
		t.Fatal("expected error for malformed arguments")
	}
}

func TestToConfig(t *testing.T) {
	temp := float32(0.2)
	cfg := toConfig(&provider.Request{
		System:      "You are a front desk assistant.",
		Temperature: &temp,
		MaxTokens:   512,
		Tools: []provider.ToolSpec{{
			Name:       "find_guest",
			Parameters: map[string]any{"type": "object"},
		}},
	})
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "You are a front desk assistant." {
		t.Errorf("SystemInstruction = %+v", cfg.SystemInstruction)
	}
	if cfg.MaxOutputTokens != 512 {
		t.Errorf("MaxOutputTokens = %d", cfg.MaxOutputTokens)
	}
	if len(cfg.Tools) != 1 || cfg.Tools[0].FunctionDeclarations[0].Name != "find_guest" {
		t.Errorf("Tools = %+v", cfg.Tools)
	}
}

func TestToResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{
				{Text: "Let me look. "},
				{FunctionCall: &genai.FunctionCall{Name: "find_guest", Args: map[string]any{"query": "Ada"}}},
			}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
	}

	out := toResponse("gemini-2.0-flash", resp)
	if out.FinishReason != "tool_calls" {
		t.Errorf("FinishReason = %q", out.FinishReason)
	}
	if out.Message.Content != "Let me look. " {
		t.Errorf("Content = %q", out.Message.Content)
	}
	if len(out.Message.ToolCalls) != 1 {
		t.Fatalf("ToolCalls = %+v", out.Message.ToolCalls)
	}
	tc := out.Message.ToolCalls[0]
	if tc.ID == "" {
		t.Error("missing generated call id")
	}
	var args map[string]string
	if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil || args["query"] != "Ada" {
		t.Errorf("Arguments = %s (%v)", tc.Arguments, err)
	}
	if out.Usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d", out.Usage.TotalTokens)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(provider.Config{}); err == nil {
		t.Error("expected error without api key")
	}
	if err := ValidateConfig(provider.Config{APIKey: "k"}); err != nil {
		t.Errorf("ValidateConfig() error = %v", err)
	}
}
