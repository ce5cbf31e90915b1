// Package seclog keeps an in-memory audit trail of auth, access and
// validation events for the admin security view. The buffer is a bounded
// ring owned by an injected *Log instance; once full, the oldest entries
// fall off. Entries are mirrored to slog so they also reach the process
// logs. Nothing survives a restart.
package seclog

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JulianGiraldo97/pagadiario-sub000/internal/domain"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Event types recorded by the application.
const (
	EventLoginSuccess     = "login_success"
	EventLoginFailure     = "login_failure"
	EventTokenRejected    = "token_rejected"
	EventAccessDenied     = "access_denied"
	EventValidationFailed = "validation_failed"
	EventPaymentRecorded  = "payment_recorded"
	EventPaymentDeleted   = "payment_deleted"
	EventLogCleared       = "log_cleared"
)

// Entry is one recorded security event. Timestamp is assigned by Log.Record.
type Entry struct {
	Timestamp time.Time   `json:"timestamp"`
	Level     Level       `json:"level"`
	Event     string      `json:"event"`
	UserID    *uuid.UUID  `json:"user_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Path      string      `json:"path,omitempty"`
	Details   string      `json:"details,omitempty"`
	Success   bool        `json:"success"`
}

// Log is a fixed-capacity ring of security events, safe for concurrent use.
type Log struct {
	mu     sync.Mutex
	buf    []Entry
	start  int
	length int
	logger *slog.Logger
}

// New returns a Log holding at most capacity entries.
func New(capacity int, logger *slog.Logger) *Log {
	if capacity <= 0 {
		capacity = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{buf: make([]Entry, capacity), logger: logger}
}

// Record appends an entry, overwriting the oldest once the ring is full.
// The timestamp is always server-assigned.
func (l *Log) Record(e Entry) {
	e.Timestamp = time.Now()

	l.mu.Lock()
	idx := (l.start + l.length) % len(l.buf)
	l.buf[idx] = e
	if l.length < len(l.buf) {
		l.length++
	} else {
		l.start = (l.start + 1) % len(l.buf)
	}
	l.mu.Unlock()

	attrs := []any{"event", e.Event, "success", e.Success}
	if e.UserID != nil {
		attrs = append(attrs, "user_id", e.UserID.String())
	}
	if e.Path != "" {
		attrs = append(attrs, "path", e.Path)
	}
	if e.Details != "" {
		attrs = append(attrs, "details", e.Details)
	}
	switch e.Level {
	case LevelError:
		l.logger.Error("security event", attrs...)
	case LevelWarning:
		l.logger.Warn("security event", attrs...)
	default:
		l.logger.Info("security event", attrs...)
	}
}

// Recent returns up to limit of the newest entries in chronological order.
// limit <= 0 returns everything retained.
func (l *Log) Recent(limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.length
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, 0, n)
	// Walk the newest n entries oldest-first.
	first := l.length - n
	for i := first; i < l.length; i++ {
		out = append(out, l.buf[(l.start+i)%len(l.buf)])
	}
	return out
}

// Len reports how many entries are currently retained.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.length
}

// Clear empties the buffer.
func (l *Log) Clear() {
	l.mu.Lock()
	l.start = 0
	l.length = 0
	l.mu.Unlock()
}
