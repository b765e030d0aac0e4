// Package session implements the conversation-session aggregate: an
// ordered, append-mostly sequence of chat messages plus metadata, with
// mutation operations that maintain the structural invariants (system
// prompt at index 0 iff present, message count in sync, timestamps
// refreshed) and a versioned JSON codec.
package session

import (
	"fmt"
	"slices"

	"github.com/mochi-chat/mochi/core/chat"
)

// Session is the aggregate root for one conversation. It exclusively owns
// its messages and metadata; all mutation goes through the methods below.
// A Session is not safe for concurrent use — callers serialize access per
// session id.
type Session struct {
	ID       string
	Model    string
	Messages []chat.Message
	Metadata Metadata
}

// New creates an empty session for the given id and model, with metadata
// initialized to defaults and both timestamps set to now.
func New(id, model string) *Session {
	now := chat.Timestamp()
	return &Session{
		ID:    id,
		Model: model,
		Metadata: Metadata{
			SessionID:     id,
			Model:         model,
			CreatedAt:     now,
			UpdatedAt:     now,
			FormatVersion: FormatVersion,
			ToolSettings:  DefaultToolSettings(),
			AgentSettings: DefaultAgentSettings(),
			ContextWindow: DefaultContextWindowConfig(),
		},
	}
}

// AddMessage appends a message to the history.
func (s *Session) AddMessage(msg chat.Message) {
	s.Messages = append(s.Messages, msg)
	s.syncMessageCount()
	s.touch()
}

// EditMessage replaces the content of the user message at index and
// discards every later message, branching the conversation at that point.
// Returns ErrOutOfRange when index does not address a message and
// ErrNotEditable when the addressed message is not a user message.
func (s *Session) EditMessage(index int, content string) error {
	if index < 0 || index >= len(s.Messages) {
		return fmt.Errorf("%w: index %d with %d messages", ErrOutOfRange, index, len(s.Messages))
	}

	msg, ok := s.Messages[index].(*chat.UserMessage)
	if !ok {
		return fmt.Errorf("%w: %s message at index %d", ErrNotEditable, s.Messages[index].Role(), index)
	}

	msg.Content = content
	msg.Timestamp = chat.Timestamp()

	// Everything after the edited turn is invalidated.
	s.Messages = s.Messages[:index+1]
	s.syncMessageCount()
	s.touch()
	return nil
}

// HasSystemPrompt reports whether the first message is a system message.
// The system prompt is encoded positionally: index 0 iff present. This
// accessor is the single place that checks the position.
func (s *Session) HasSystemPrompt() bool {
	if len(s.Messages) == 0 {
		return false
	}
	_, ok := s.Messages[0].(*chat.SystemMessage)
	return ok
}

// SetSystemPrompt installs a system prompt at index 0, replacing an
// existing one in place or inserting ahead of the current history. The
// conversation is never truncated. sourceFile records the prompt file the
// content came from; empty means inline.
func (s *Session) SetSystemPrompt(content, sourceFile string) {
	msg := chat.NewSystem(content, sourceFile)

	if s.HasSystemPrompt() {
		s.Messages[0] = msg
	} else {
		s.Messages = slices.Insert(s.Messages, 0, chat.Message(msg))
	}

	s.syncMessageCount()
	s.touch()
}

// RemoveSystemPrompt deletes the system prompt at index 0, shifting the
// remaining messages up. Returns ErrNoSystemPrompt when there is none.
func (s *Session) RemoveSystemPrompt() error {
	if !s.HasSystemPrompt() {
		return ErrNoSystemPrompt
	}

	s.Messages = slices.Delete(s.Messages, 0, 1)
	s.syncMessageCount()
	s.touch()
	return nil
}

// UpdateModel changes the model for future turns. The duplicate on
// metadata is kept in sync.
func (s *Session) UpdateModel(model string) {
	s.Model = model
	s.Metadata.Model = model
	s.touch()
}

// UpdateToolSettings replaces the session's tool settings.
func (s *Session) UpdateToolSettings(settings ToolSettings) {
	s.Metadata.ToolSettings = settings
	s.touch()
}

// UpdateAgentSettings replaces the session's agent settings.
func (s *Session) UpdateAgentSettings(settings AgentSettings) {
	s.Metadata.AgentSettings = settings
	s.touch()
}

// Preview returns the content of the first user message, truncated to
// maxLength runes (ellipsis included) when it exceeds the limit. Returns
// the empty string when the session has no user message.
func (s *Session) Preview(maxLength int) string {
	for _, msg := range s.Messages {
		user, ok := msg.(*chat.UserMessage)
		if !ok {
			continue
		}
		runes := []rune(user.Content)
		if len(runes) > maxLength {
			cut := maxLength - 3
			if cut < 0 {
				cut = 0
			}
			return string(runes[:cut]) + "..."
		}
		return user.Content
	}
	return ""
}

func (s *Session) syncMessageCount() {
	s.Metadata.MessageCount = len(s.Messages)
}

func (s *Session) touch() {
	s.Metadata.UpdatedAt = chat.Timestamp()
}
