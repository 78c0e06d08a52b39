package conversation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

const testPrompt = "You are an e-commerce assistant."

func newTestLog(t *testing.T) *Log {
	t.Helper()
	l := NewLog(testPrompt)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	step := 0
	l.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
	l.Reset()
	return l
}

func TestAppendUserRejectsBlankText(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	for _, text := range []string{"", "   ", "\n\t"} {
		if err := l.AppendUser(text); !errors.Is(err, contractx.ErrValidation) {
			t.Fatalf("AppendUser(%q) error = %v, want ErrValidation", text, err)
		}
	}
	if err := l.AppendUser("  show me laptops  "); err != nil {
		t.Fatalf("AppendUser returned error: %v", err)
	}

	history := l.PublicHistory()
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	if history[0].Role != RoleUser || history[0].Content != "show me laptops" {
		t.Fatalf("unexpected history entry: %+v", history[0])
	}
	if history[0].Timestamp.IsZero() {
		t.Fatal("history entry has zero timestamp")
	}
}

func TestAppendAssistantNeedsTextOrInvocations(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	if err := l.AppendAssistant("", nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("empty assistant message error = %v, want ErrValidation", err)
	}
	if err := l.AppendAssistant("", []contractx.ToolInvocation{{Capability: "search_products"}}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("invocation without id error = %v, want ErrValidation", err)
	}

	inv := contractx.ToolInvocation{ID: "call_1", Capability: "search_products", RawArgs: `{"query":"laptop"}`}
	if err := l.AppendAssistant("", []contractx.ToolInvocation{inv}); err != nil {
		t.Fatalf("assistant message with invocation returned error: %v", err)
	}
	if err := l.AppendAssistant("Here you go.", nil); err != nil {
		t.Fatalf("assistant message with text returned error: %v", err)
	}
}

func TestAppendToolResultRequiresKnownInvocation(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	if err := l.AppendToolResult("call_1", `{}`); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("tool result before any assistant message error = %v, want ErrValidation", err)
	}

	inv := contractx.ToolInvocation{ID: "call_1", Capability: "search_products"}
	if err := l.AppendAssistant("", []contractx.ToolInvocation{inv}); err != nil {
		t.Fatalf("AppendAssistant returned error: %v", err)
	}
	if err := l.AppendToolResult("call_9", `{}`); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("tool result for unknown id error = %v, want ErrValidation", err)
	}
	if err := l.AppendToolResult("", `{}`); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("tool result with empty id error = %v, want ErrValidation", err)
	}
	if err := l.AppendToolResult("call_1", `{"success":true}`); err != nil {
		t.Fatalf("AppendToolResult returned error: %v", err)
	}
}

func TestCompletionMessagesRoundTripShape(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	inv := contractx.ToolInvocation{ID: "call_1", Capability: "search_products", RawArgs: `{"query":"headphones"}`}
	if err := l.AppendUser("any wireless headphones?"); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}
	if err := l.AppendAssistant("", []contractx.ToolInvocation{inv}); err != nil {
		t.Fatalf("AppendAssistant: %v", err)
	}
	if err := l.AppendToolResult("call_1", `{"success":true,"total_found":2}`); err != nil {
		t.Fatalf("AppendToolResult: %v", err)
	}
	if err := l.AppendAssistant("I found two options.", nil); err != nil {
		t.Fatalf("AppendAssistant: %v", err)
	}

	msgs, err := l.CompletionMessages()
	if err != nil {
		t.Fatalf("CompletionMessages returned error: %v", err)
	}
	wantRoles := []schema.RoleType{schema.System, schema.User, schema.Assistant, schema.Tool, schema.Assistant}
	if len(msgs) != len(wantRoles) {
		t.Fatalf("message count = %d, want %d", len(msgs), len(wantRoles))
	}
	for i, role := range wantRoles {
		if msgs[i].Role != role {
			t.Fatalf("msgs[%d].Role = %s, want %s", i, msgs[i].Role, role)
		}
	}
	if msgs[0].Content != testPrompt {
		t.Fatalf("system content = %q, want prompt", msgs[0].Content)
	}
	if len(msgs[2].ToolCalls) != 1 {
		t.Fatalf("assistant tool calls = %d, want 1", len(msgs[2].ToolCalls))
	}
	call := msgs[2].ToolCalls[0]
	if call.ID != "call_1" || call.Function.Name != "search_products" || call.Function.Arguments != inv.RawArgs {
		t.Fatalf("unexpected tool call: %+v", call)
	}
	if msgs[3].ToolCallID != "call_1" || !strings.Contains(msgs[3].Content, `"total_found":2`) {
		t.Fatalf("unexpected tool message: %+v", msgs[3])
	}
}

func TestCompletionMessagesDropsOrphanToolResults(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	if err := l.AppendUser("order it"); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}
	// An orphan can only enter through state corruption, so splice it in
	// directly: one with an id nothing announces, one whose assistant message
	// comes later in the transcript.
	l.entries = append(l.entries, ToolResultMessage{InvocationID: "ghost", Payload: `{}`, Time: l.now()})
	l.entries = append(l.entries, ToolResultMessage{InvocationID: "call_7", Payload: `{}`, Time: l.now()})
	if err := l.AppendAssistant("", []contractx.ToolInvocation{{ID: "call_7", Capability: "create_order"}}); err != nil {
		t.Fatalf("AppendAssistant: %v", err)
	}

	msgs, err := l.CompletionMessages()
	if err != nil {
		t.Fatalf("CompletionMessages returned error: %v", err)
	}
	for i, msg := range msgs {
		if msg.Role == schema.Tool {
			t.Fatalf("msgs[%d] is an orphan tool message: %+v", i, msg)
		}
	}
}

func TestRollbackDiscardsPartialTurn(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	if err := l.AppendUser("buy the monitor"); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}
	mark := l.Mark()

	inv := contractx.ToolInvocation{ID: "call_3", Capability: "create_order", RawArgs: `{}`}
	if err := l.AppendAssistant("", []contractx.ToolInvocation{inv}); err != nil {
		t.Fatalf("AppendAssistant: %v", err)
	}
	if err := l.AppendToolResult("call_3", `{"success":false}`); err != nil {
		t.Fatalf("AppendToolResult: %v", err)
	}

	l.Rollback(mark)

	history := l.PublicHistory()
	if len(history) != 1 || history[0].Role != RoleUser {
		t.Fatalf("history after rollback = %+v, want only the user message", history)
	}
	// The invocation index must forget rolled-back ids.
	if err := l.AppendToolResult("call_3", `{}`); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("tool result for rolled-back invocation error = %v, want ErrValidation", err)
	}

	// A mark below the seed system message is ignored.
	l.Rollback(0)
	msgs, err := l.CompletionMessages()
	if err != nil {
		t.Fatalf("CompletionMessages: %v", err)
	}
	if len(msgs) == 0 || msgs[0].Role != schema.System {
		t.Fatal("seed system message was discarded")
	}
}

func TestResetReseedsSystemMessage(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	if err := l.AppendUser("hello"); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}
	if err := l.AppendAssistant("hi there", nil); err != nil {
		t.Fatalf("AppendAssistant: %v", err)
	}

	l.Reset()

	if got := l.PublicHistory(); len(got) != 0 {
		t.Fatalf("history after reset = %+v, want empty", got)
	}
	msgs, err := l.CompletionMessages()
	if err != nil {
		t.Fatalf("CompletionMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != schema.System || msgs[0].Content != testPrompt {
		t.Fatalf("messages after reset = %+v, want single system message", msgs)
	}
}

func TestPublicHistorySkipsCapabilityPlumbing(t *testing.T) {
	t.Parallel()

	l := newTestLog(t)
	inv := contractx.ToolInvocation{ID: "call_1", Capability: "search_products"}
	if err := l.AppendUser("find tablets"); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}
	if err := l.AppendAssistant("", []contractx.ToolInvocation{inv}); err != nil {
		t.Fatalf("AppendAssistant: %v", err)
	}
	if err := l.AppendToolResult("call_1", `{"success":true}`); err != nil {
		t.Fatalf("AppendToolResult: %v", err)
	}
	if err := l.AppendAssistant("Two tablets are in stock.", nil); err != nil {
		t.Fatalf("AppendAssistant: %v", err)
	}

	history := l.PublicHistory()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2: %+v", len(history), history)
	}
	if history[0].Role != RoleUser || history[1].Role != RoleAssistant {
		t.Fatalf("unexpected roles: %+v", history)
	}
}
