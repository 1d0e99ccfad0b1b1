// Package logging wires the engine's leveled logger and the early-log
// buffer used before the app environment is fully up.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var root = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
})

func init() {
	// EMBERLINE_LOG_LEVEL=debug flips on verbose engine logging.
	if lvl := os.Getenv("EMBERLINE_LOG_LEVEL"); lvl != "" {
		if parsed, err := log.ParseLevel(strings.ToLower(lvl)); err == nil {
			root.SetLevel(parsed)
		}
	}
}

// Logger is the engine's logger type, aliased so subsystems do not
// import the logging backend directly.
type Logger = log.Logger

// Level mirrors the backend's level type for the same reason.
type Level = log.Level

const (
	DebugLevel = log.DebugLevel
	InfoLevel  = log.InfoLevel
	WarnLevel  = log.WarnLevel
	ErrorLevel = log.ErrorLevel
)

// Root returns the process-wide logger.
func Root() *log.Logger { return root }

// For returns a logger prefixed with a subsystem name ("logic", "audio").
func For(subsystem string) *log.Logger {
	return root.WithPrefix(subsystem)
}

// TeeOutput duplicates root logger output into w (the debug console
// tail) alongside stderr.
func TeeOutput(w io.Writer) {
	root.SetOutput(io.MultiWriter(os.Stderr, w))
}

// Entry is one buffered pre-boot record.
type Entry struct {
	Level log.Level
	Msg   string
}

// EarlyBuffer collects log records emitted before the cloud/console sinks
// exist. Access from any thread; the lock is held only for the duration of
// each append or drain.
type EarlyBuffer struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
	dropped int
}

// NewEarlyBuffer creates a buffer holding at most limit records.
func NewEarlyBuffer(limit int) *EarlyBuffer {
	return &EarlyBuffer{limit: limit}
}

// Add appends a record, dropping it if the buffer is full.
func (b *EarlyBuffer) Add(level log.Level, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) >= b.limit {
		b.dropped++
		return
	}
	b.entries = append(b.entries, Entry{Level: level, Msg: msg})
}

// Drain returns all buffered records and empties the buffer.
func (b *EarlyBuffer) Drain() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.entries
	b.entries = nil
	return out
}

// Dropped returns how many records were discarded due to the limit.
func (b *EarlyBuffer) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// CloudSink ships log records off-device. Fire and forget; no ordering
// guarantee relative to other sinks.
type CloudSink interface {
	Send(level log.Level, msg string) error
}

// FlushEarly drains buf into sink best-effort. Failures are swallowed
// with a single warning; correctness of the primary path must never
// depend on this secondary one.
func FlushEarly(buf *EarlyBuffer, sink CloudSink) {
	if sink == nil {
		return
	}
	warned := false
	for _, e := range buf.Drain() {
		if err := sink.Send(e.Level, e.Msg); err != nil && !warned {
			root.Warn("early cloud log delivery failed", "err", err)
			warned = true
		}
	}
	if n := buf.Dropped(); n > 0 {
		root.Warn("early log buffer overflowed", "dropped", n)
	}
}
