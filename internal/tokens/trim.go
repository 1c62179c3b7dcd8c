package tokens

import "github.com/tjfontaine/innkeeper/internal/domain"

// Trim keeps the most recent messages whose combined size fits budget. The current
// turn (the last user message and everything after it) is always kept whole, even
// over budget, so tool results stay paired with the tool calls and request that
// produced them. Earlier history is dropped whole exchanges at a time and never
// starts with a tool result or an assistant turn.
func Trim(c Counter, model string, msgs []domain.ChatMessage, budget int) ([]domain.ChatMessage, error) {
	if len(msgs) == 0 || budget <= 0 {
		return msgs, nil
	}

	total, err := c.CountMessages(model, msgs)
	if err != nil {
		return nil, err
	}
	if total <= budget {
		return msgs, nil
	}

	// Without a user message there is no safe place to cut.
	turn := len(msgs) - 1
	for turn > 0 && msgs[turn].Role != domain.ChatRoleUser {
		turn--
	}

	used, err := c.CountMessages(model, msgs[turn:])
	if err != nil {
		return nil, err
	}
	start := turn
	for i := turn - 1; i >= 0; i-- {
		n, err := c.CountMessages(model, msgs[i:i+1])
		if err != nil {
			return nil, err
		}
		if used+n > budget {
			break
		}
		used += n
		start = i
	}

	// Advance to the next user message so the window opens on a complete exchange.
	for start < turn && msgs[start].Role != domain.ChatRoleUser {
		start++
	}
	return msgs[start:], nil
}
