package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

// Log owns one session's transcript: a system prompt followed by user,
// assistant, and tool-result messages in append order. Appends are validated;
// once in, a message is immutable. A Log belongs to a single session actor
// and is not safe for concurrent use.
type Log struct {
	entries []Message
	known   map[string]struct{} // invocation ids announced by assistant messages
	system  string
	now     func() time.Time
}

func NewLog(systemPrompt string) *Log {
	l := &Log{
		system: strings.TrimSpace(systemPrompt),
		now:    time.Now,
	}
	l.Reset()
	return l
}

/* ------------------------------- Appends -------------------------------- */

func (l *Log) AppendUser(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: user message text is empty", contractx.ErrValidation)
	}
	l.entries = append(l.entries, UserMessage{Text: text, Time: l.now().UTC()})
	return nil
}

// AppendAssistant records a model turn. Text may be empty only when the turn
// requested at least one capability invocation.
func (l *Log) AppendAssistant(text string, invocations []contractx.ToolInvocation) error {
	if strings.TrimSpace(text) == "" && len(invocations) == 0 {
		return fmt.Errorf("%w: assistant message has neither text nor invocations", contractx.ErrValidation)
	}
	for _, inv := range invocations {
		if inv.ID == "" || inv.Capability == "" {
			return fmt.Errorf("%w: invocation is missing id or capability name", contractx.ErrValidation)
		}
	}
	l.entries = append(l.entries, AssistantMessage{Text: text, Invocations: invocations, Time: l.now().UTC()})
	for _, inv := range invocations {
		l.known[inv.ID] = struct{}{}
	}
	return nil
}

// AppendToolResult records the payload for an invocation announced by a prior
// assistant message.
func (l *Log) AppendToolResult(invocationID, payload string) error {
	if invocationID == "" {
		return fmt.Errorf("%w: tool result has empty invocation id", contractx.ErrValidation)
	}
	if _, ok := l.known[invocationID]; !ok {
		return fmt.Errorf("%w: tool result references unknown invocation %s", contractx.ErrValidation, invocationID)
	}
	l.entries = append(l.entries, ToolResultMessage{InvocationID: invocationID, Payload: payload, Time: l.now().UTC()})
	return nil
}

/* ----------------------------- Projections ------------------------------- */

// CompletionMessages serializes the transcript for a completion call. A tool
// result whose invocation id matches no assistant invocation seen earlier in
// the transcript is dropped rather than sent: the completion API rejects
// orphaned tool messages outright.
func (l *Log) CompletionMessages() ([]*schema.Message, error) {
	msgs := make([]*schema.Message, 0, len(l.entries))
	seen := make(map[string]struct{}, len(l.known))
	for _, entry := range l.entries {
		switch m := entry.(type) {
		case SystemMessage:
			msgs = append(msgs, schema.SystemMessage(m.Text))
		case UserMessage:
			msgs = append(msgs, schema.UserMessage(m.Text))
		case AssistantMessage:
			var calls []schema.ToolCall
			for _, inv := range m.Invocations {
				seen[inv.ID] = struct{}{}
				calls = append(calls, schema.ToolCall{
					ID:       inv.ID,
					Type:     "function",
					Function: schema.FunctionCall{Name: inv.Capability, Arguments: inv.RawArgs},
				})
			}
			msgs = append(msgs, schema.AssistantMessage(m.Text, calls))
		case ToolResultMessage:
			if _, ok := seen[m.InvocationID]; !ok {
				continue
			}
			msgs = append(msgs, schema.ToolMessage(m.Payload, m.InvocationID))
		default:
			return nil, fmt.Errorf("%w: unknown message kind %T in transcript", contractx.ErrValidation, entry)
		}
	}
	return msgs, nil
}

// PublicHistory returns the user-visible transcript, oldest first: user
// messages and assistant messages that carry text. Capability plumbing stays
// internal.
func (l *Log) PublicHistory() []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		switch m := entry.(type) {
		case UserMessage:
			out = append(out, Entry{Role: RoleUser, Content: m.Text, Timestamp: m.Time})
		case AssistantMessage:
			if strings.TrimSpace(m.Text) == "" {
				continue
			}
			out = append(out, Entry{Role: RoleAssistant, Content: m.Text, Timestamp: m.Time})
		}
	}
	return out
}

/* --------------------------- Turn bookkeeping ---------------------------- */

// Mark returns the current transcript length for a later Rollback.
func (l *Log) Mark() int {
	return len(l.entries)
}

// Rollback discards every message appended after mark and rebuilds the
// invocation index from the survivors. The seed system message is never
// discarded.
func (l *Log) Rollback(mark int) {
	if mark < 1 || mark >= len(l.entries) {
		return
	}
	l.entries = l.entries[:mark]
	l.known = make(map[string]struct{}, len(l.known))
	for _, entry := range l.entries {
		m, ok := entry.(AssistantMessage)
		if !ok {
			continue
		}
		for _, inv := range m.Invocations {
			l.known[inv.ID] = struct{}{}
		}
	}
}

// Reset clears the transcript back to the seed system message.
func (l *Log) Reset() {
	l.entries = l.entries[:0]
	l.known = make(map[string]struct{}, 8)
	l.entries = append(l.entries, SystemMessage{Text: l.system, Time: l.now().UTC()})
}
