package sentiment

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"
)

// Memory retention constants
const (
	// DefaultMaxEntriesPerSession is the default number of history entries kept per session
	DefaultMaxEntriesPerSession = 1000
	// MaxTextSize is the maximum size of a stored text in bytes
	MaxTextSize = 50 * 1024 // 50KB per entry
)

// ErrUnknownBackend is returned for an unsupported history backend name
var ErrUnknownBackend = errors.New("unknown history backend")

// Entry is one analysed text in a session history
type Entry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Text       string    `json:"text"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryStore defines the interface for session history persistence.
// Entries of a session are returned oldest first.
type HistoryStore interface {
	// Append stores an entry at the end of its session history
	Append(ctx context.Context, entry Entry) error

	// List returns up to limit entries of a session starting at offset.
	// A limit <= 0 returns every entry.
	List(ctx context.Context, sessionID string, limit, offset int) ([]Entry, error)

	// Count returns the number of entries of a session
	Count(ctx context.Context, sessionID string) (int, error)

	// Clear removes every entry of a session
	Clear(ctx context.Context, sessionID string) error

	// CleanupOlderThan removes entries of all sessions older than the given duration
	CleanupOlderThan(ctx context.Context, olderThan time.Duration) (int64, error)

	// Close releases the underlying resources
	Close() error
}

// truncateText cuts text to MaxTextSize bytes without splitting a rune
func truncateText(text string) string {
	if len(text) <= MaxTextSize {
		return text
	}
	cut := MaxTextSize
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
