package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/videoedit/ai-edit-api/apierrors"
	"github.com/videoedit/ai-edit-api/capability"
	"github.com/videoedit/ai-edit-api/config"
)

// Client drives structured plan generation against an LLM chat
// capability: markdown-fence stripping, JSON repair on parse failure,
// and retry with exponential backoff on transient capability errors.
type Client struct {
	Chat capability.ChatCompleter
}

func New(chat capability.ChatCompleter) *Client {
	return &Client{Chat: chat}
}

// GenerateStructured calls the chat capability with messages and
// parses the response into a Plan, making at most
// config.LLMMaxRetries attempts in all on a retriable dependency
// error, with backoff base 2^attempt seconds between them.
func (c *Client) GenerateStructured(ctx context.Context, messages []capability.ChatMessage) (Plan, capability.Usage, error) {
	var (
		content string
		usage   capability.Usage
	)

	attempt := 0
	operation := func() error {
		var err error
		content, usage, err = c.Chat.ChatJSON(ctx, messages, config.DefaultLLMTemperature, config.DefaultLLMMaxTokens)
		attempt++
		if err != nil && !apierrors.IsUnretriable(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.WithMaxRetries(&expBase2{attempt: 0}, uint64(config.LLMMaxRetries-1))
	if err := backoff.Retry(operation, b); err != nil {
		return Plan{}, capability.Usage{}, fmt.Errorf("llm chat completion failed after %d attempts: %w", attempt, err)
	}

	plan, err := parsePlan(content)
	if err != nil {
		return Plan{}, usage, err
	}
	return plan, usage, nil
}

// expBase2 implements backoff.BackOff with delay = 2^attempt seconds,
// matching the capability's documented retry policy exactly (as
// opposed to backoff's default jittered exponential curve).
type expBase2 struct {
	attempt int
}

func (e *expBase2) NextBackOff() time.Duration {
	d := time.Duration(1<<uint(e.attempt)) * time.Second
	e.attempt++
	return d
}

func (e *expBase2) Reset() { e.attempt = 0 }

func parsePlan(raw string) (Plan, error) {
	content := stripMarkdownFences(raw)

	var plan Plan
	if err := json.Unmarshal([]byte(content), &plan); err == nil {
		return plan, nil
	}

	repaired, repairErr := repairJSON(content)
	if repairErr != nil {
		return Plan{}, fmt.Errorf("repairing malformed plan json: %w", repairErr)
	}
	if err := json.Unmarshal([]byte(repaired), &plan); err != nil {
		return Plan{}, fmt.Errorf("parsing repaired plan json (offset context: %s): %w", offsetContext(repaired, err), err)
	}
	return plan, nil
}

func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// repairJSON removes trailing commas before a closing brace/bracket,
// then appends enough closing braces/brackets to balance any that are
// still open.
func repairJSON(s string) (string, error) {
	s = removeTrailingCommas(s)

	var braceDepth, bracketDepth int
	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			braceDepth++
		case '}':
			braceDepth--
		case '[':
			bracketDepth++
		case ']':
			bracketDepth--
		}
	}

	if braceDepth < 0 || bracketDepth < 0 {
		return "", fmt.Errorf("json has more closing than opening delimiters")
	}

	var b strings.Builder
	b.WriteString(s)
	for i := 0; i < bracketDepth; i++ {
		b.WriteString("]")
	}
	for i := 0; i < braceDepth; i++ {
		b.WriteString("}")
	}
	return b.String(), nil
}

func removeTrailingCommas(s string) string {
	var b strings.Builder
	inString := false
	escaped := false
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if inString {
			b.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		if r == '"' {
			inString = true
			b.WriteRune(r)
			continue
		}
		if r == ',' {
			// look ahead past whitespace for a closing delimiter
			j := i + 1
			for j < len(runes) && (runes[j] == ' ' || runes[j] == '\n' || runes[j] == '\t' || runes[j] == '\r') {
				j++
			}
			if j < len(runes) && (runes[j] == '}' || runes[j] == ']') {
				continue // drop the trailing comma
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func offsetContext(s string, err error) string {
	se, ok := err.(*json.SyntaxError)
	if !ok {
		return ""
	}
	offset := int(se.Offset)
	start := offset - 20
	if start < 0 {
		start = 0
	}
	end := offset + 20
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}
