package session

import "errors"

// Sentinel errors for session mutation and decoding. All are recoverable,
// caller-visible conditions; the package never panics for them.
var (
	// ErrOutOfRange is returned by EditMessage when the index does not
	// address an existing message.
	ErrOutOfRange = errors.New("message index out of range")

	// ErrNotEditable is returned by EditMessage when the addressed message
	// is not a user message.
	ErrNotEditable = errors.New("only user messages can be edited")

	// ErrNoSystemPrompt is returned by RemoveSystemPrompt when the session
	// has no system prompt at index 0.
	ErrNoSystemPrompt = errors.New("no system prompt to remove")

	// ErrMalformed is returned by Decode when the payload is not a valid
	// session document.
	ErrMalformed = errors.New("malformed session data")
)
