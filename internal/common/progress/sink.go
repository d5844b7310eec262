// internal/common/progress/sink.go
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"wanted-applier/internal/common/logger"
)

// Sink receives stage progress. Increment is called from many workers at once;
// implementations must be safe for concurrent use.
type Sink interface {
	Start(stage string, total int, level int)
	Increment(stage string)
	Finish(stage string, ok bool, message string)
}

type stageState struct {
	level int
	total int
	done  atomic.Int64
}

// ConsoleSink writes one plain status line per stage event.
type ConsoleSink struct {
	w      io.Writer
	mu     sync.Mutex
	stages map[string]*stageState
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w, stages: make(map[string]*stageState)}
}

func (s *ConsoleSink) Start(stage string, total int, level int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stages[stage] = &stageState{level: level, total: total}
	if total > 0 {
		fmt.Fprintf(s.w, "%s%s (%d)\n", indent(level), stage, total)
		return
	}
	fmt.Fprintf(s.w, "%s%s\n", indent(level), stage)
}

func (s *ConsoleSink) Increment(stage string) {
	if st := s.state(stage); st != nil {
		st.done.Add(1)
	}
}

func (s *ConsoleSink) Finish(stage string, ok bool, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	level := 0
	if st, found := s.stages[stage]; found {
		level = st.level
	}
	mark := "x"
	if ok {
		mark = "✓"
	}
	fmt.Fprintf(s.w, "%s  %s %s\n", indent(level), mark, message)
}

// Count returns how many items of stage have completed so far.
func (s *ConsoleSink) Count(stage string) int64 {
	if st := s.state(stage); st != nil {
		return st.done.Load()
	}
	return 0
}

func (s *ConsoleSink) state(stage string) *stageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stages[stage]
}

func indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat("  ", level)
}

// LogSink reports stage events through the structured logger. Increments are
// logged at debug level.
type LogSink struct {
	log logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Start(stage string, total int, level int) {
	s.log.Info("Stage started", map[string]interface{}{
		"stage": stage,
		"total": total,
		"level": level,
	})
}

func (s *LogSink) Increment(stage string) {
	s.log.Debug("Stage item completed", map[string]interface{}{"stage": stage})
}

func (s *LogSink) Finish(stage string, ok bool, message string) {
	fields := map[string]interface{}{
		"stage":   stage,
		"message": message,
	}
	if ok {
		s.log.Info("Stage finished", fields)
		return
	}
	s.log.Error("Stage failed", fields)
}

// MultiSink fans every event out to each of its sinks in order.
type MultiSink []Sink

func (m MultiSink) Start(stage string, total int, level int) {
	for _, s := range m {
		s.Start(stage, total, level)
	}
}

func (m MultiSink) Increment(stage string) {
	for _, s := range m {
		s.Increment(stage)
	}
}

func (m MultiSink) Finish(stage string, ok bool, message string) {
	for _, s := range m {
		s.Finish(stage, ok, message)
	}
}

type NopSink struct{}

func (NopSink) Start(string, int, int)      {}
func (NopSink) Increment(string)            {}
func (NopSink) Finish(string, bool, string) {}
