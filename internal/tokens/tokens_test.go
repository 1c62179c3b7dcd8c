package tokens

import (
	"strings"
	"testing"

	"github.com/tiktoken-go/tokenizer"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		model string
		want  tokenizer.Encoding
	}{
		{"gpt-4o-mini", tokenizer.O200kBase},
		{"gpt-4.1", tokenizer.O200kBase},
		{"o3-mini", tokenizer.O200kBase},
		{"gpt-4-turbo", tokenizer.Cl100kBase},
		{"gpt-3.5-turbo", tokenizer.Cl100kBase},
		{"gemini-2.0-flash", tokenizer.O200kBase},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := encodingFor(tt.model); got != tt.want {
				t.Errorf("encodingFor(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestTiktokenCount(t *testing.T) {
	c := NewTiktoken()

	n, err := c.CountText("gpt-4o", "hello world")
	if err != nil {
		t.Fatalf("CountText() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountText() = %d, want 2", n)
	}

	msgs := []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Content: "hello world"},
		{Role: domain.ChatRoleAssistant, ToolCalls: []domain.ToolCallRecord{{Name: "find_guest", Arguments: `{"query":"ada"}`}}},
	}
	total, err := c.CountMessages("gpt-4o", msgs)
	if err != nil {
		t.Fatalf("CountMessages() error = %v", err)
	}
	// two framed messages, two content tokens, the tool call, and priming
	if total <= 2*(tokensPerMessage+tokensPerRole)+2+tokensPerToolCall+assistantPriming {
		t.Errorf("CountMessages() = %d, too small", total)
	}
}

func TestTrim(t *testing.T) {
	est := &Estimator{CharsPerToken: 1}
	msg := func(role, content string) domain.ChatMessage {
		return domain.ChatMessage{Role: role, Content: content}
	}
	long := strings.Repeat("x", 40)

	history := []domain.ChatMessage{
		msg(domain.ChatRoleUser, long),
		msg(domain.ChatRoleAssistant, long),
		msg(domain.ChatRoleUser, "book 101"),
		{Role: domain.ChatRoleAssistant, ToolCalls: []domain.ToolCallRecord{{ID: "c1", Name: "draft_reservation", Arguments: "{}"}}},
		{Role: domain.ChatRoleTool, ToolCallID: "c1", Content: "ok"},
		msg(domain.ChatRoleAssistant, "drafted"),
		msg(domain.ChatRoleUser, "yes"),
	}

	tests := []struct {
		name      string
		budget    int
		wantLen   int
		wantFirst string
	}{
		{"fits", 1000, 7, long},
		{"no budget keeps all", 0, 7, long},
		{"drops oldest exchange", 90, 5, "book 101"},
		{"tiny budget keeps newest", 1, 1, "yes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Trim(est, "gpt-4o", history, tt.budget)
			if err != nil {
				t.Fatalf("Trim() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Fatalf("Trim() kept %d messages, want %d", len(got), tt.wantLen)
			}
			if got[0].Content != tt.wantFirst {
				t.Errorf("Trim() first = %q, want %q", got[0].Content, tt.wantFirst)
			}
			if got[0].Role != domain.ChatRoleUser {
				t.Errorf("Trim() starts with role %q", got[0].Role)
			}
		})
	}
}

func TestTrimKeepsCurrentTurn(t *testing.T) {
	est := &Estimator{CharsPerToken: 1}
	history := []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Content: "earlier question"},
		{Role: domain.ChatRoleAssistant, Content: "earlier answer"},
		{Role: domain.ChatRoleUser, Content: "occupancy for March?"},
		{Role: domain.ChatRoleAssistant, ToolCalls: []domain.ToolCallRecord{{ID: "c1", Name: "get_analytics", Arguments: "{}"}}},
		{Role: domain.ChatRoleTool, ToolCallID: "c1", Content: strings.Repeat("x", 500)},
	}

	got, err := Trim(est, "gpt-4o", history, 300)
	if err != nil {
		t.Fatalf("Trim() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Trim() kept %d messages, want the 3 of the current turn", len(got))
	}
	if got[0].Role != domain.ChatRoleUser || got[0].Content != "occupancy for March?" {
		t.Errorf("Trim() first = %+v, want the current user request", got[0])
	}
	if len(got[1].ToolCalls) != 1 || got[2].ToolCallID != "c1" {
		t.Error("Trim() split the tool call from its result")
	}
}
