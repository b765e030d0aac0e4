package session

import (
	"encoding/json"
	"fmt"

	"github.com/mochi-chat/mochi/core/chat"
)

// document is the on-disk session schema: a metadata object followed by
// the full message sequence.
type document struct {
	Metadata Metadata       `json:"metadata"`
	Messages []chat.Message `json:"messages"`
}

// Encode serializes the session to its portable JSON document. The
// encoding is deterministic and lossless: Decode(Encode(s)) reproduces s
// field for field.
func (s *Session) Encode() ([]byte, error) {
	doc := document{Metadata: s.Metadata, Messages: s.Messages}
	if doc.Messages == nil {
		doc.Messages = []chat.Message{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return data, nil
}

// Decode reconstructs a session from its portable JSON document. The
// metadata is migrated through the format-version upgrade chain, and
// optional nested objects a file may omit are default-constructed.
// Returns ErrMalformed for payloads that are not a valid document and
// chat.ErrUnknownRole (wrapped) for unrecognized message roles.
func Decode(data []byte) (*Session, error) {
	var doc struct {
		Metadata json.RawMessage   `json:"metadata"`
		Messages []json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var meta Metadata
	if len(doc.Metadata) > 0 {
		if err := json.Unmarshal(doc.Metadata, &meta); err != nil {
			return nil, fmt.Errorf("%w: metadata: %v", ErrMalformed, err)
		}
	}
	migrateMetadata(&meta)
	normalizeMetadata(&meta)

	var messages []chat.Message
	for i, raw := range doc.Messages {
		msg, err := chat.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		messages = append(messages, msg)
	}

	return &Session{
		ID:       meta.SessionID,
		Model:    meta.Model,
		Messages: messages,
		Metadata: meta,
	}, nil
}
