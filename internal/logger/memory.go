package logger

import (
	"fmt"
	"sync"
	"time"
)

// MemoryLog keeps the most recent entries in a ring so the dashboard can
// show a short activity tail without touching log files.
type MemoryLog struct {
	mu      sync.Mutex
	entries []string
	next    int
	full    bool
}

// NewMemoryLog builds a ring holding up to capacity lines.
func NewMemoryLog(capacity int) *MemoryLog {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryLog{entries: make([]string, capacity)}
}

// Tail returns up to n most recent lines, oldest first.
func (m *MemoryLog) Tail(n int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ordered []string
	if m.full {
		ordered = append(ordered, m.entries[m.next:]...)
	}
	ordered = append(ordered, m.entries[:m.next]...)

	if n > 0 && len(ordered) > n {
		ordered = ordered[len(ordered)-n:]
	}
	out := make([]string, len(ordered))
	copy(out, ordered)
	return out
}

func (m *MemoryLog) add(level, msg, event string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[m.next] = fmt.Sprintf("%s %s %s (%s)", time.Now().Format("15:04:05"), level, msg, event)
	m.next++
	if m.next == len(m.entries) {
		m.next = 0
		m.full = true
	}
}

// teeLogger forwards entries to an inner logger and mirrors them into a ring.
type teeLogger struct {
	inner Logger
	ring  *MemoryLog
}

// Tee wraps log so every entry is also captured by ring.
func Tee(log Logger, ring *MemoryLog) Logger {
	if log == nil {
		log = NopLogger{}
	}
	if ring == nil {
		return log
	}
	return &teeLogger{inner: log, ring: ring}
}

func (t *teeLogger) DebugObj(msg, event string, fields map[string]any) {
	t.ring.add("DEBUG", msg, event)
	t.inner.DebugObj(msg, event, fields)
}

func (t *teeLogger) InfoObj(msg, event string, fields map[string]any) {
	t.ring.add("INFO", msg, event)
	t.inner.InfoObj(msg, event, fields)
}

func (t *teeLogger) WarnObj(msg, event string, fields map[string]any) {
	t.ring.add("WARN", msg, event)
	t.inner.WarnObj(msg, event, fields)
}

func (t *teeLogger) ErrorObj(msg, event string, fields map[string]any) {
	t.ring.add("ERROR", msg, event)
	t.inner.ErrorObj(msg, event, fields)
}
