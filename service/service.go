// Package service wires the chat subsystems together: session storage,
// model registry, context-window sizing, prompt templates, and the model
// runtime client.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mochi-chat/mochi/contextwindow"
	"github.com/mochi-chat/mochi/core/chat"
	"github.com/mochi-chat/mochi/observability"
	"github.com/mochi-chat/mochi/prompts"
	"github.com/mochi-chat/mochi/registry"
	"github.com/mochi-chat/mochi/session"
	"github.com/mochi-chat/mochi/store"
)

// Sentinel errors for service operations.
var (
	ErrNoModelClient = errors.New("no model client configured")
	ErrEmptyHistory  = errors.New("session has no messages to send")
)

// Service is the composition root for the chat system.
type Service struct {
	sessions *store.Manager
	window   *contextwindow.Service
	prompts  *prompts.Service
	models   *registry.Static
	client   ModelClient
	observer observability.Observer
}

// Option configures a Service after config-driven initialization.
type Option func(*Service)

// WithModelClient sets the wire client to the model runtime. Without one,
// SendMessage fails; everything else works.
func WithModelClient(c ModelClient) Option {
	return func(s *Service) { s.client = c }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *Service) { s.observer = o }
}

// New creates a Service from configuration, constructing each subsystem
// through its own config-driven constructor.
func New(cfg *Config, opts ...Option) (*Service, error) {
	resolved := DefaultConfig()
	if cfg != nil {
		resolved.Merge(cfg)
	}

	s := &Service{
		models:   registry.NewStatic(resolved.Models...),
		observer: observability.NewSlogObserver(slog.Default()),
	}
	for _, opt := range opts {
		opt(s)
	}

	managerOpts := []store.Option{store.WithObserver(s.observer)}
	if len(resolved.Models) > 0 {
		managerOpts = append(managerOpts, store.WithModelRegistry(s.models))
	}
	sessions, err := store.NewManager(&resolved.Store, managerOpts...)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}
	s.sessions = sessions

	window, err := contextwindow.NewService(&resolved.ContextWindow, s.models,
		contextwindow.WithObserver(s.observer))
	if err != nil {
		return nil, fmt.Errorf("init context window service: %w", err)
	}
	s.window = window

	promptSvc, err := prompts.NewService(&resolved.Prompts,
		prompts.WithObserver(s.observer))
	if err != nil {
		return nil, fmt.Errorf("init prompt service: %w", err)
	}
	s.prompts = promptSvc

	return s, nil
}

// Sessions exposes the session store manager.
func (s *Service) Sessions() *store.Manager { return s.sessions }

// Prompts exposes the system-prompt service.
func (s *Service) Prompts() *prompts.Service { return s.prompts }

// Window exposes the context-window service.
func (s *Service) Window() *contextwindow.Service { return s.window }

// Models exposes the model registry.
func (s *Service) Models() *registry.Static { return s.models }

// Close releases the underlying storage.
func (s *Service) Close() error { return s.sessions.Close() }

// WindowInfo reports the context-window outcome of a turn.
type WindowInfo struct {
	CurrentWindow int    `json:"current_window"`
	UsageTokens   int    `json:"usage_tokens"`
	Reason        string `json:"reason"`
}

// TurnResult is the outcome of one SendMessage call.
type TurnResult struct {
	SessionID string                 `json:"session_id"`
	Message   *chat.AssistantMessage `json:"message"`
	Window    WindowInfo             `json:"context_window"`
}

// SendMessage runs one conversation turn: append the user message, size
// the context window from the previous turn's usage, call the model, and
// persist the assistant's reply with its reported token counts. An empty
// content sends the existing history unchanged, which is how a client
// retries after editing a message.
func (s *Service) SendMessage(ctx context.Context, sessionID, content string) (*TurnResult, error) {
	if s.client == nil {
		return nil, ErrNoModelClient
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if content != "" {
		sess.AddMessage(chat.NewUser(content))
	}
	if len(sess.Messages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyHistory, sessionID)
	}

	usage := lastTurnUsage(sess.Messages)
	calc := s.window.Plan(ctx, sess, usage)
	s.window.Record(ctx, sess, calc)

	result, err := s.client.Chat(ctx, ChatRequest{
		Model:    sess.Model,
		Messages: sess.Messages,
		Options:  s.window.RequestOptions(sess, calc),
	})
	if err != nil {
		return nil, fmt.Errorf("model request: %w", err)
	}

	reply := chat.NewAssistant(result.Content, sess.Model)
	reply.EvalCount = result.EvalCount
	reply.PromptEvalCount = result.PromptEvalCount
	reply.ToolCalls = result.ToolCalls
	sess.AddMessage(reply)

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	return &TurnResult{
		SessionID: sess.ID,
		Message:   reply,
		Window: WindowInfo{
			CurrentWindow: sess.Metadata.ContextWindow.CurrentWindow,
			UsageTokens:   turnUsage(reply),
			Reason:        sess.Metadata.ContextWindow.LastAdjustment,
		},
	}, nil
}

// lastTurnUsage sums the token counts of the most recent assistant
// message, or zero for a conversation with no completed turns yet.
func lastTurnUsage(messages []chat.Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if reply, ok := messages[i].(*chat.AssistantMessage); ok {
			return turnUsage(reply)
		}
	}
	return 0
}

func turnUsage(reply *chat.AssistantMessage) int {
	var usage int
	if reply.PromptEvalCount != nil {
		usage += *reply.PromptEvalCount
	}
	if reply.EvalCount != nil {
		usage += *reply.EvalCount
	}
	return usage
}

// WindowStatus is the context-window section of a session status report.
type WindowStatus struct {
	DynamicEnabled  bool   `json:"dynamic_enabled"`
	CurrentWindow   int    `json:"current_window"`
	ModelMaxContext int    `json:"model_max_context,omitempty"`
	LastAdjustment  string `json:"last_adjustment_reason"`
	ManualOverride  bool   `json:"manual_override"`
}

// Status is a full session status report.
type Status struct {
	SessionID        string           `json:"session_id"`
	Model            string           `json:"model"`
	MessageCount     int              `json:"message_count"`
	ContextWindow    WindowStatus     `json:"context_window"`
	ToolsEnabled     bool             `json:"tools_enabled"`
	ActiveTools      []string         `json:"active_tools"`
	ExecutionPolicy  string           `json:"execution_policy"`
	AgentsEnabled    bool             `json:"agents_enabled"`
	EnabledAgents    []string         `json:"enabled_agents"`
	SystemPromptFile *string          `json:"system_prompt_file"`
	Summary          *session.Summary `json:"summary"`
	SummaryModel     *string          `json:"summary_model"`
}

// SessionStatus assembles a full status report for one session.
func (s *Service) SessionStatus(ctx context.Context, sessionID string) (*Status, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	meta := sess.Metadata
	cw := meta.ContextWindow

	var promptFile *string
	if len(sess.Messages) > 0 {
		if sys, ok := sess.Messages[0].(*chat.SystemMessage); ok {
			promptFile = sys.SourceFile
		}
	}

	return &Status{
		SessionID:    sess.ID,
		Model:        sess.Model,
		MessageCount: meta.MessageCount,
		ContextWindow: WindowStatus{
			DynamicEnabled:  cw.DynamicEnabled,
			CurrentWindow:   cw.CurrentWindow,
			ModelMaxContext: s.window.ModelMaxContext(ctx, sess.Model),
			LastAdjustment:  cw.LastAdjustment,
			ManualOverride:  cw.ManualOverride,
		},
		ToolsEnabled:     len(meta.ToolSettings.Tools) > 0 || meta.ToolSettings.ToolGroup != nil,
		ActiveTools:      meta.ToolSettings.Tools,
		ExecutionPolicy:  string(meta.ToolSettings.ExecutionPolicy),
		AgentsEnabled:    len(meta.AgentSettings.EnabledAgents) > 0,
		EnabledAgents:    meta.AgentSettings.EnabledAgents,
		SystemPromptFile: promptFile,
		Summary:          meta.Summary,
		SummaryModel:     meta.SummaryModel,
	}, nil
}
