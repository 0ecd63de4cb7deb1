// Package notify delivers short user-facing notifications, the CLI counterpart
// of the web storefront's toasts.
package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Level of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier receives already-resolved message keys. Implementations translate
// them for display.
type Notifier interface {
	Success(msg string, args ...any)
	Error(msg string, args ...any)
}

// ConsoleNotifier prints translated notifications to a writer, usually stderr.
type ConsoleNotifier struct {
	out io.Writer
	tr  *Translator
	mu  sync.Mutex
}

// NewConsoleNotifier creates a notifier writing to out in locale.
func NewConsoleNotifier(out io.Writer, locale string) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, tr: NewTranslator(locale)}
}

func (n *ConsoleNotifier) Success(msg string, args ...any) { n.write("✓", msg, args) }
func (n *ConsoleNotifier) Error(msg string, args ...any)   { n.write("✗", msg, args) }

func (n *ConsoleNotifier) write(mark, msg string, args []any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "%s %s\n", mark, n.tr.T(msg, args...))
}

// LogNotifier sends notifications to a zap logger, for unattended runs.
type LogNotifier struct {
	logger *zap.Logger
	tr     *Translator
}

// NewLogNotifier creates a notifier that logs in locale.
func NewLogNotifier(logger *zap.Logger, locale string) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notify"), tr: NewTranslator(locale)}
}

func (n *LogNotifier) Success(msg string, args ...any) {
	n.logger.Info(n.tr.T(msg, args...), zap.String("key", msg))
}

func (n *LogNotifier) Error(msg string, args ...any) {
	n.logger.Warn(n.tr.T(msg, args...), zap.String("key", msg))
}

// Notification is one recorded notification.
type Notification struct {
	Level Level
	Key   string
	Args  []any
}

// Recorder keeps notifications in memory. Used by tests.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Success(msg string, args ...any) { r.add(LevelSuccess, msg, args) }
func (r *Recorder) Error(msg string, args ...any)   { r.add(LevelError, msg, args) }

func (r *Recorder) add(level Level, msg string, args []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Key: msg, Args: args})
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Keys returns the recorded message keys in order.
func (r *Recorder) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.items))
	for i, n := range r.items {
		keys[i] = n.Key
	}
	return keys
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Success(string, ...any) {}
func (Nop) Error(string, ...any)   {}

var (
	_ Notifier = (*ConsoleNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*Recorder)(nil)
	_ Notifier = Nop{}
)
