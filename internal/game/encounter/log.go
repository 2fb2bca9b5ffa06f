package encounter

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/observability"
)

// DefaultLogSize is the number of messages a Log keeps.
const DefaultLogSize = 200

// Log is the encounter's message log: a bounded ring of narrative lines,
// each mirrored to zap at info. It satisfies ai.MessageSink.
type Log struct {
	lines  []string
	next   int
	full   bool
	total  int
	logger *zap.Logger
}

// NewLog creates a Log holding up to size lines.
//
// Precondition: logger must not be nil; size < 1 uses DefaultLogSize.
func NewLog(size int, logger *zap.Logger) *Log {
	if logger == nil {
		panic("encounter.NewLog: logger must not be nil")
	}
	if size < 1 {
		size = DefaultLogSize
	}
	return &Log{lines: make([]string, size), logger: logger}
}

// Message appends msg, evicting the oldest line when full.
func (l *Log) Message(msg string) {
	l.logger.Info(msg, zap.String(observability.ComponentKey, "encounter"))
	l.lines[l.next] = msg
	l.next = (l.next + 1) % len(l.lines)
	if l.next == 0 {
		l.full = true
	}
	l.total++
}

// Lines returns the retained lines, oldest first.
func (l *Log) Lines() []string {
	if !l.full {
		return append([]string{}, l.lines[:l.next]...)
	}
	out := make([]string, 0, len(l.lines))
	out = append(out, l.lines[l.next:]...)
	return append(out, l.lines[:l.next]...)
}

// Total is the number of messages ever written, including evicted ones.
func (l *Log) Total() int { return l.total }

// Since returns the retained lines written after the first n messages. It lets
// a caller print only what is new since it last looked at Total.
func (l *Log) Since(n int) []string {
	lines := l.Lines()
	skip := n - (l.total - len(lines))
	if skip <= 0 {
		return lines
	}
	if skip >= len(lines) {
		return []string{}
	}
	return lines[skip:]
}
