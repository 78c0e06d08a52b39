package conversation

import (
	"time"

	contractx "github.com/Ade-Adeleke/SmartShopperAI/agent/contract"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one transcript entry. The variant set is closed: the serializer
// switches over it exhaustively and treats anything else as corruption.
type Message interface {
	Role() string
	At() time.Time
	sealed()
}

type SystemMessage struct {
	Text string
	Time time.Time
}

func (m SystemMessage) Role() string  { return RoleSystem }
func (m SystemMessage) At() time.Time { return m.Time }
func (m SystemMessage) sealed()       {}

type UserMessage struct {
	Text string
	Time time.Time
}

func (m UserMessage) Role() string  { return RoleUser }
func (m UserMessage) At() time.Time { return m.Time }
func (m UserMessage) sealed()       {}

type AssistantMessage struct {
	Text        string
	Invocations []contractx.ToolInvocation
	Time        time.Time
}

func (m AssistantMessage) Role() string  { return RoleAssistant }
func (m AssistantMessage) At() time.Time { return m.Time }
func (m AssistantMessage) sealed()       {}

// ToolResultMessage carries the JSON payload produced for one invocation of
// an earlier assistant message.
type ToolResultMessage struct {
	InvocationID string
	Payload      string
	Time         time.Time
}

func (m ToolResultMessage) Role() string  { return RoleTool }
func (m ToolResultMessage) At() time.Time { return m.Time }
func (m ToolResultMessage) sealed()       {}

// Entry is the user-facing projection of a message.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
