// Package chat defines the message model for conversation sessions: a
// closed, role-tagged union of the four message kinds exchanged during a
// conversation, plus the id and timestamp conventions shared by every
// component that produces messages.
//
// The discriminant is the concrete type, never a settable field — a
// decoded message cannot claim one role while carrying another role's
// payload. Serialization dispatches on the "role" key via Decode.
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleSystem    Role = "system"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ErrUnknownRole is returned by Decode when the role discriminant is not
// one of the four known message kinds.
var ErrUnknownRole = errors.New("unknown message role")

// Message is the closed union of conversation message kinds. The only
// implementations are *UserMessage, *SystemMessage, *AssistantMessage and
// *ToolMessage; callers recover the variant by type switch.
type Message interface {
	// Role returns the discriminant for the concrete variant.
	Role() Role

	sealed()
}

// UserMessage is a message typed by the user.
type UserMessage struct {
	Content   string `json:"content"`
	MessageID string `json:"message_id"`
	Timestamp string `json:"timestamp"`
}

// SystemMessage is a system prompt. SourceFile records the prompt file it
// was loaded from, when it was not supplied inline.
type SystemMessage struct {
	Content    string  `json:"content"`
	SourceFile *string `json:"source_file"`
	MessageID  string  `json:"message_id"`
	Timestamp  string  `json:"timestamp"`
}

// AssistantMessage is a model response. EvalCount and PromptEvalCount carry
// the token usage reported by the model runtime for the turn that produced
// this message; both are nil when the runtime did not report usage.
type AssistantMessage struct {
	Content         string     `json:"content"`
	Model           string     `json:"model"`
	MessageID       string     `json:"message_id"`
	Timestamp       string     `json:"timestamp"`
	EvalCount       *int       `json:"eval_count"`
	PromptEvalCount *int       `json:"prompt_eval_count"`
	ToolCalls       []ToolCall `json:"tool_calls"`
}

// ToolMessage is the result of a tool invocation, correlated by tool name.
type ToolMessage struct {
	ToolName  string `json:"tool_name"`
	Content   string `json:"content"`
	MessageID string `json:"message_id"`
	Timestamp string `json:"timestamp"`
}

func (*UserMessage) Role() Role      { return RoleUser }
func (*SystemMessage) Role() Role    { return RoleSystem }
func (*AssistantMessage) Role() Role { return RoleAssistant }
func (*ToolMessage) Role() Role      { return RoleTool }

func (*UserMessage) sealed()      {}
func (*SystemMessage) sealed()    {}
func (*AssistantMessage) sealed() {}
func (*ToolMessage) sealed()      {}

// NewUser creates a UserMessage with a fresh id and current timestamp.
func NewUser(content string) *UserMessage {
	return &UserMessage{
		Content:   content,
		MessageID: NewID(),
		Timestamp: Timestamp(),
	}
}

// NewSystem creates a SystemMessage with a fresh id and current timestamp.
// An empty sourceFile is recorded as absent.
func NewSystem(content, sourceFile string) *SystemMessage {
	msg := &SystemMessage{
		Content:   content,
		MessageID: NewID(),
		Timestamp: Timestamp(),
	}
	if sourceFile != "" {
		msg.SourceFile = &sourceFile
	}
	return msg
}

// NewAssistant creates an AssistantMessage with a fresh id and current
// timestamp. Usage counts and tool calls are set by the caller.
func NewAssistant(content, model string) *AssistantMessage {
	return &AssistantMessage{
		Content:   content,
		Model:     model,
		MessageID: NewID(),
		Timestamp: Timestamp(),
	}
}

// NewTool creates a ToolMessage with a fresh id and current timestamp.
func NewTool(toolName, content string) *ToolMessage {
	return &ToolMessage{
		ToolName:  toolName,
		Content:   content,
		MessageID: NewID(),
		Timestamp: Timestamp(),
	}
}

func (m *UserMessage) MarshalJSON() ([]byte, error) {
	type payload UserMessage
	return json.Marshal(struct {
		Role Role `json:"role"`
		*payload
	}{RoleUser, (*payload)(m)})
}

func (m *SystemMessage) MarshalJSON() ([]byte, error) {
	type payload SystemMessage
	return json.Marshal(struct {
		Role Role `json:"role"`
		*payload
	}{RoleSystem, (*payload)(m)})
}

func (m *AssistantMessage) MarshalJSON() ([]byte, error) {
	type payload AssistantMessage
	return json.Marshal(struct {
		Role Role `json:"role"`
		*payload
	}{RoleAssistant, (*payload)(m)})
}

func (m *ToolMessage) MarshalJSON() ([]byte, error) {
	type payload ToolMessage
	return json.Marshal(struct {
		Role Role `json:"role"`
		*payload
	}{RoleTool, (*payload)(m)})
}

// Decode reconstructs a Message from its JSON form by dispatching on the
// "role" discriminant. Returns ErrUnknownRole for unrecognized roles, which
// callers treat as corrupt or forward-incompatible data.
func Decode(data []byte) (Message, error) {
	var probe struct {
		Role Role `json:"role"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	switch probe.Role {
	case RoleUser:
		var m UserMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode user message: %w", err)
		}
		return &m, nil
	case RoleSystem:
		var m SystemMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode system message: %w", err)
		}
		return &m, nil
	case RoleAssistant:
		var m AssistantMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode assistant message: %w", err)
		}
		return &m, nil
	case RoleTool:
		var m ToolMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode tool message: %w", err)
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, probe.Role)
	}
}
