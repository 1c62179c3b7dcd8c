// Package tokens counts chat tokens and trims agent history to a budget.
package tokens

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/tjfontaine/innkeeper/internal/domain"
)

// Counter sizes chat messages for a model.
type Counter interface {
	CountText(model, text string) (int, error)
	CountMessages(model string, msgs []domain.ChatMessage) (int, error)
}

// Per-message framing overhead used by OpenAI chat models.
const (
	tokensPerMessage  = 3
	tokensPerRole     = 1
	tokensPerToolCall = 3
	assistantPriming  = 3
)

// Tiktoken counts with the BPE encoding of the model family.
type Tiktoken struct {
	mu     sync.RWMutex
	codecs map[tokenizer.Encoding]tokenizer.Codec
}

func NewTiktoken() *Tiktoken {
	return &Tiktoken{codecs: make(map[tokenizer.Encoding]tokenizer.Codec)}
}

// encodingFor maps a model name to its encoding. Unknown and non-OpenAI models
// fall back to o200k_base, which is close enough for budgeting.
func encodingFor(model string) tokenizer.Encoding {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt-4o"), strings.HasPrefix(model, "gpt-4.1"), strings.HasPrefix(model, "gpt-5"),
		strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"), strings.HasPrefix(model, "gpt-3.5"), strings.HasPrefix(model, "text-embedding"):
		return tokenizer.Cl100kBase
	default:
		return tokenizer.O200kBase
	}
}

func (t *Tiktoken) codec(model string) (tokenizer.Codec, error) {
	enc := encodingFor(model)

	t.mu.RLock()
	if c, ok := t.codecs[enc]; ok {
		t.mu.RUnlock()
		return c, nil
	}
	t.mu.RUnlock()

	c, err := tokenizer.Get(enc)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer encoding: %w", err)
	}

	t.mu.Lock()
	t.codecs[enc] = c
	t.mu.Unlock()
	return c, nil
}

func (t *Tiktoken) CountText(model, text string) (int, error) {
	c, err := t.codec(model)
	if err != nil {
		return 0, err
	}
	ids, _, err := c.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (t *Tiktoken) CountMessages(model string, msgs []domain.ChatMessage) (int, error) {
	c, err := t.codec(model)
	if err != nil {
		return 0, err
	}
	count := func(s string) int {
		ids, _, _ := c.Encode(s)
		return len(ids)
	}

	total := 0
	for _, m := range msgs {
		total += tokensPerMessage + tokensPerRole + count(m.Content)
		for _, tc := range m.ToolCalls {
			total += count(tc.Name) + count(tc.Arguments) + tokensPerToolCall
		}
	}
	return total + assistantPriming, nil
}

// Estimator approximates four characters per token. It is used when no tokenizer
// applies or as a test double.
type Estimator struct {
	CharsPerToken float64
}

func NewEstimator() *Estimator {
	return &Estimator{CharsPerToken: 4}
}

func (e *Estimator) CountText(_ string, text string) (int, error) {
	return int(float64(len(text)) / e.CharsPerToken), nil
}

func (e *Estimator) CountMessages(model string, msgs []domain.ChatMessage) (int, error) {
	chars := 0
	for _, m := range msgs {
		chars += len(m.Role) + len(m.Content) + 4
		for _, tc := range m.ToolCalls {
			chars += len(tc.Name) + len(tc.Arguments)
		}
	}
	return int(float64(chars) / e.CharsPerToken), nil
}
