package chat

import (
	"bytes"
	"encoding/json"
)

// ToolCall records a tool invocation requested by the model in an
// assistant message. Fields are flat (ID, Name, Arguments) for direct use
// by callers; Arguments is kept raw because runtimes disagree on whether
// it is a JSON object or a JSON-encoded string.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// MarshalJSON serializes to the nested runtime format
// ({type: "function", function: {name, arguments}}) so stored sessions
// replay directly into model requests.
func (tc ToolCall) MarshalJSON() ([]byte, error) {
	type function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments,omitempty"`
	}
	return json.Marshal(struct {
		ID       string   `json:"id,omitempty"`
		Type     string   `json:"type"`
		Function function `json:"function"`
	}{
		ID:       tc.ID,
		Type:     "function",
		Function: function{Name: tc.Name, Arguments: tc.Arguments},
	})
}

// UnmarshalJSON accepts both the nested runtime format
// ({function: {name, arguments}}) and the flat form ({name, arguments}),
// so sessions written by either producer decode to the same value.
func (tc *ToolCall) UnmarshalJSON(data []byte) error {
	var nested struct {
		ID       string `json:"id"`
		Function struct {
			Name      string          `json:"name"`
			Arguments json.RawMessage `json:"arguments"`
		} `json:"function"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}

	if nested.Function.Name != "" {
		tc.ID = nested.ID
		tc.Name = nested.Function.Name
		tc.Arguments = compactRaw(nested.Function.Arguments)
		return nil
	}

	type plain ToolCall
	if err := json.Unmarshal(data, (*plain)(tc)); err != nil {
		return err
	}
	tc.Arguments = compactRaw(tc.Arguments)
	return nil
}

// compactRaw strips insignificant whitespace so decoded arguments compare
// byte-for-byte regardless of how the producer indented them.
func compactRaw(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return json.RawMessage(buf.Bytes())
}
