package session_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/mochi-chat/mochi/core/chat"
	"github.com/mochi-chat/mochi/session"
)

func newConversation(t *testing.T) *session.Session {
	t.Helper()
	s := session.New(chat.NewID(), "qwen3:14b")
	s.AddMessage(chat.NewUser("first question"))
	s.AddMessage(chat.NewAssistant("first answer", s.Model))
	s.AddMessage(chat.NewUser("second question"))
	s.AddMessage(chat.NewAssistant("second answer", s.Model))
	return s
}

func TestNew(t *testing.T) {
	s := session.New("abcdef0123", "qwen3:14b")

	if s.ID != "abcdef0123" {
		t.Errorf("got id %q, want %q", s.ID, "abcdef0123")
	}
	if s.Model != "qwen3:14b" {
		t.Errorf("got model %q, want %q", s.Model, "qwen3:14b")
	}
	if s.Metadata.Model != s.Model {
		t.Errorf("metadata model %q out of sync with %q", s.Metadata.Model, s.Model)
	}
	if len(s.Messages) != 0 {
		t.Errorf("new session should be empty, got %d messages", len(s.Messages))
	}
	if s.Metadata.MessageCount != 0 {
		t.Errorf("got message count %d, want 0", s.Metadata.MessageCount)
	}
	if s.Metadata.CreatedAt != s.Metadata.UpdatedAt {
		t.Errorf("created_at %q should equal updated_at %q at creation", s.Metadata.CreatedAt, s.Metadata.UpdatedAt)
	}
	if s.Metadata.FormatVersion != session.FormatVersion {
		t.Errorf("got format version %q, want %q", s.Metadata.FormatVersion, session.FormatVersion)
	}
	if !s.Metadata.ContextWindow.DynamicEnabled {
		t.Error("dynamic sizing should default to enabled")
	}
	if s.Metadata.ContextWindow.CurrentWindow != 8192 {
		t.Errorf("got default window %d, want 8192", s.Metadata.ContextWindow.CurrentWindow)
	}
	if s.Metadata.ToolSettings.ExecutionPolicy != session.PolicyAlwaysConfirm {
		t.Errorf("got execution policy %q, want %q", s.Metadata.ToolSettings.ExecutionPolicy, session.PolicyAlwaysConfirm)
	}
}

func TestAddMessage_CountStaysInSync(t *testing.T) {
	s := session.New(chat.NewID(), "m")

	for i := 1; i <= 5; i++ {
		s.AddMessage(chat.NewUser("msg"))
		if s.Metadata.MessageCount != i {
			t.Fatalf("after %d adds: got count %d", i, s.Metadata.MessageCount)
		}
		if s.Metadata.MessageCount != len(s.Messages) {
			t.Fatalf("count %d does not match %d messages", s.Metadata.MessageCount, len(s.Messages))
		}
	}
}

func TestEditMessage_TruncatesTail(t *testing.T) {
	s := newConversation(t)

	if err := s.EditMessage(2, "revised question"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	if len(s.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(s.Messages))
	}
	edited, ok := s.Messages[2].(*chat.UserMessage)
	if !ok {
		t.Fatalf("message 2 is %T, want *chat.UserMessage", s.Messages[2])
	}
	if edited.Content != "revised question" {
		t.Errorf("got content %q, want %q", edited.Content, "revised question")
	}
	if s.Metadata.MessageCount != 3 {
		t.Errorf("got count %d, want 3", s.Metadata.MessageCount)
	}
}

func TestEditMessage_FirstTurnDiscardsEverything(t *testing.T) {
	s := newConversation(t)

	if err := s.EditMessage(0, "x"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	if len(s.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(s.Messages))
	}
	if got := s.Messages[0].(*chat.UserMessage).Content; got != "x" {
		t.Errorf("got content %q, want %q", got, "x")
	}
}

func TestEditMessage_OutOfRange(t *testing.T) {
	s := newConversation(t)

	for _, index := range []int{-1, 4, 100} {
		err := s.EditMessage(index, "nope")
		if !errors.Is(err, session.ErrOutOfRange) {
			t.Errorf("index %d: got %v, want ErrOutOfRange", index, err)
		}
	}
	if len(s.Messages) != 4 {
		t.Errorf("failed edit must not mutate: got %d messages, want 4", len(s.Messages))
	}
}

func TestEditMessage_NotEditable(t *testing.T) {
	s := newConversation(t)
	s.SetSystemPrompt("be helpful", "")

	// Index 0 is now a system message, index 2 an assistant message.
	for _, index := range []int{0, 2} {
		err := s.EditMessage(index, "nope")
		if !errors.Is(err, session.ErrNotEditable) {
			t.Errorf("index %d: got %v, want ErrNotEditable", index, err)
		}
	}
	if len(s.Messages) != 5 {
		t.Errorf("failed edit must not mutate: got %d messages, want 5", len(s.Messages))
	}
}

func TestSystemPrompt_PositionalIdempotence(t *testing.T) {
	s := newConversation(t)

	s.SetSystemPrompt("first prompt", "")
	s.SetSystemPrompt("second prompt", "helpful.md")

	systemCount := 0
	for _, msg := range s.Messages {
		if msg.Role() == chat.RoleSystem {
			systemCount++
		}
	}
	if systemCount != 1 {
		t.Fatalf("got %d system messages, want exactly 1", systemCount)
	}
	if !s.HasSystemPrompt() {
		t.Fatal("system prompt should be at index 0")
	}

	prompt := s.Messages[0].(*chat.SystemMessage)
	if prompt.Content != "second prompt" {
		t.Errorf("got content %q, want %q", prompt.Content, "second prompt")
	}
	if prompt.SourceFile == nil || *prompt.SourceFile != "helpful.md" {
		t.Errorf("got source file %v, want %q", prompt.SourceFile, "helpful.md")
	}

	// Setting a prompt never truncates: the 4 conversation turns survive.
	if len(s.Messages) != 5 {
		t.Errorf("got %d messages, want 5", len(s.Messages))
	}
}

func TestRemoveSystemPrompt_PreservesOrder(t *testing.T) {
	s := newConversation(t)
	s.SetSystemPrompt("prompt", "")

	if err := s.RemoveSystemPrompt(); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if s.HasSystemPrompt() {
		t.Error("system prompt should be gone")
	}
	if len(s.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(s.Messages))
	}
	wantRoles := []chat.Role{chat.RoleUser, chat.RoleAssistant, chat.RoleUser, chat.RoleAssistant}
	for i, want := range wantRoles {
		if s.Messages[i].Role() != want {
			t.Errorf("message %d: got role %q, want %q", i, s.Messages[i].Role(), want)
		}
	}
}

func TestRemoveSystemPrompt_NoPrompt(t *testing.T) {
	s := newConversation(t)

	err := s.RemoveSystemPrompt()
	if !errors.Is(err, session.ErrNoSystemPrompt) {
		t.Errorf("got %v, want ErrNoSystemPrompt", err)
	}
}

func TestHasSystemPrompt_PositionNotPresence(t *testing.T) {
	s := session.New(chat.NewID(), "m")
	s.AddMessage(chat.NewUser("hello"))
	// A system message not at index 0 does not count as a system prompt.
	s.AddMessage(chat.NewSystem("late prompt", ""))

	if s.HasSystemPrompt() {
		t.Error("system message at index 1 must not count as system prompt")
	}
}

func TestUpdateModel_SyncsMetadata(t *testing.T) {
	s := session.New(chat.NewID(), "old-model")
	s.UpdateModel("new-model")

	if s.Model != "new-model" || s.Metadata.Model != "new-model" {
		t.Errorf("got model %q / metadata model %q, want both %q", s.Model, s.Metadata.Model, "new-model")
	}
}

func TestUpdateSettings(t *testing.T) {
	s := session.New(chat.NewID(), "m")

	group := "dev"
	s.UpdateToolSettings(session.ToolSettings{
		Tools:           []string{"calculator", "search"},
		ToolGroup:       &group,
		ExecutionPolicy: session.PolicyAuto,
	})
	s.UpdateAgentSettings(session.AgentSettings{EnabledAgents: []string{"researcher"}})

	if got := s.Metadata.ToolSettings.ExecutionPolicy; got != session.PolicyAuto {
		t.Errorf("got policy %q, want %q", got, session.PolicyAuto)
	}
	if len(s.Metadata.ToolSettings.Tools) != 2 {
		t.Errorf("got %d tools, want 2", len(s.Metadata.ToolSettings.Tools))
	}
	if len(s.Metadata.AgentSettings.EnabledAgents) != 1 {
		t.Errorf("got %d agents, want 1", len(s.Metadata.AgentSettings.EnabledAgents))
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name      string
		messages  []chat.Message
		maxLength int
		want      string
	}{
		{
			name:      "empty session",
			maxLength: 100,
			want:      "",
		},
		{
			name: "no user message",
			messages: []chat.Message{
				chat.NewSystem("prompt", ""),
				chat.NewAssistant("greeting", "m"),
			},
			maxLength: 100,
			want:      "",
		},
		{
			name: "short content untouched",
			messages: []chat.Message{
				chat.NewUser("short"),
			},
			maxLength: 100,
			want:      "short",
		},
		{
			name: "skips earlier non-user messages",
			messages: []chat.Message{
				chat.NewSystem("prompt", ""),
				chat.NewAssistant("greeting", "m"),
				chat.NewUser("the real preview"),
			},
			maxLength: 100,
			want:      "the real preview",
		},
		{
			name: "long content truncated with ellipsis",
			messages: []chat.Message{
				chat.NewUser(strings.Repeat("a", 50)),
			},
			maxLength: 10,
			want:      strings.Repeat("a", 7) + "...",
		},
		{
			name: "limit smaller than the ellipsis",
			messages: []chat.Message{
				chat.NewUser("hello world"),
			},
			maxLength: 2,
			want:      "...",
		},
		{
			name: "zero limit",
			messages: []chat.Message{
				chat.NewUser("hello world"),
			},
			maxLength: 0,
			want:      "...",
		},
		{
			name: "limit exactly the ellipsis width",
			messages: []chat.Message{
				chat.NewUser("hello world"),
			},
			maxLength: 3,
			want:      "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := session.New(chat.NewID(), "m")
			for _, msg := range tt.messages {
				s.AddMessage(msg)
			}

			if got := s.Preview(tt.maxLength); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
