package diagnostics

import (
	"fmt"
	"log/slog"
	"sync"
)

// Severity grades a diagnostic entry.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Entry is one user-facing diagnostic message.
type Entry struct {
	Severity Severity
	Message  string
}

// String renders the entry as "SEVERITY: message".
func (e Entry) String() string {
	return string(e.Severity) + ": " + e.Message
}

// Log is the ordered diagnostic record of one submission. A Log belongs to a
// single submission; create a new one (or Reset) per run. Methods are safe on a
// nil receiver, which discards entries.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	mirror  *slog.Logger
}

// New returns an empty log. When mirror is non-nil each entry is also emitted
// to it at debug level.
func New(mirror *slog.Logger) *Log {
	return &Log{mirror: mirror}
}

// Append records an entry.
func (l *Log) Append(severity Severity, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Severity: severity, Message: message})
	mirror := l.mirror
	l.mu.Unlock()

	if mirror != nil {
		mirror.Debug("diagnostic", slog.String("severity", string(severity)), slog.String("message", message))
	}
}

// Infof records an INFO entry.
func (l *Log) Infof(format string, args ...any) {
	l.Append(SeverityInfo, fmt.Sprintf(format, args...))
}

// Warnf records a WARNING entry.
func (l *Log) Warnf(format string, args ...any) {
	l.Append(SeverityWarning, fmt.Sprintf(format, args...))
}

// Errorf records an ERROR entry.
func (l *Log) Errorf(format string, args ...any) {
	l.Append(SeverityError, fmt.Sprintf(format, args...))
}

// Entries returns a snapshot of the entries in insertion order.
func (l *Log) Entries() []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Messages returns the rendered entries in insertion order.
func (l *Log) Messages() []string {
	entries := l.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// HasErrors reports whether any ERROR entry was recorded.
func (l *Log) HasErrors() bool {
	for _, e := range l.Entries() {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// LastError returns the most recent ERROR message.
func (l *Log) LastError() (string, bool) {
	entries := l.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Severity == SeverityError {
			return entries[i].Message, true
		}
	}
	return "", false
}

// Reset clears all entries.
func (l *Log) Reset() {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
