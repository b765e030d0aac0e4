package chat

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the on-disk timestamp format: ISO-8601 UTC with
// microsecond precision and a Z suffix. The width is fixed so that string
// comparison of two timestamps matches their chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// NewID returns a fresh 10-character lowercase-hex identifier, used for
// both session and message ids. 40 bits of randomness; collisions are
// accepted as negligible and not checked.
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:10]
}

// Timestamp returns the current time formatted with TimeLayout.
func Timestamp() string {
	return FormatTime(time.Now())
}

// FormatTime formats t with TimeLayout in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
