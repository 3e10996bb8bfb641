package offerdoc

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Note is one entry of the structured run log.
type Note struct {
	Component string
	Message   string
}

// LogSummary is the collected run log, bucketed by severity. It is the
// second return of Generate and tells the caller what was degraded.
type LogSummary struct {
	RunID    string
	Errors   []Note
	Warnings []Note
	Info     []Note
}

// String renders the summary as a human-readable multi-line report.
func (s LogSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d errors, %d warnings, %d info\n",
		s.RunID, len(s.Errors), len(s.Warnings), len(s.Info))
	for _, n := range s.Errors {
		fmt.Fprintf(&b, "  ERROR [%s] %s\n", n.Component, n.Message)
	}
	for _, n := range s.Warnings {
		fmt.Fprintf(&b, "  WARN  [%s] %s\n", n.Component, n.Message)
	}
	for _, n := range s.Info {
		fmt.Fprintf(&b, "  INFO  [%s] %s\n", n.Component, n.Message)
	}
	return b.String()
}

type level int

const (
	levelInfo level = iota
	levelWarn
	levelError
)

type note struct {
	level level
	Note
}

// RunLog collects the notes of one generation run and mirrors them to a
// zerolog logger tagged with the run id. It is safe for use from the
// renderers of a single run; the pipeline itself is sequential but panics
// recovered mid-stage still log from deferred frames.
type RunLog struct {
	mu     sync.Mutex
	id     string
	logger zerolog.Logger
	notes  []note
}

func newRunLog(logger zerolog.Logger) *RunLog {
	id := uuid.NewString()
	return &RunLog{
		id:     id,
		logger: logger.With().Str("run_id", id).Logger(),
	}
}

// RunID returns the unique id assigned to this run.
func (l *RunLog) RunID() string { return l.id }

// Scope returns a logger bound to one component name. Renderer packages
// accept it through their local Logger interfaces.
func (l *RunLog) Scope(component string) *ScopedLog {
	return &ScopedLog{run: l, component: component}
}

func (l *RunLog) add(lv level, component, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	l.notes = append(l.notes, note{level: lv, Note: Note{Component: component, Message: msg}})
	l.mu.Unlock()

	ev := l.logger.Info()
	switch lv {
	case levelWarn:
		ev = l.logger.Warn()
	case levelError:
		ev = l.logger.Error()
	}
	ev.Str("component", component).Msg(msg)
}

// Summary snapshots the collected notes.
func (l *RunLog) Summary() LogSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := LogSummary{RunID: l.id}
	for _, n := range l.notes {
		switch n.level {
		case levelError:
			s.Errors = append(s.Errors, n.Note)
		case levelWarn:
			s.Warnings = append(s.Warnings, n.Note)
		default:
			s.Info = append(s.Info, n.Note)
		}
	}
	return s
}

// ScopedLog is a RunLog bound to a component name.
type ScopedLog struct {
	run       *RunLog
	component string
}

func (s *ScopedLog) Infof(format string, args ...any) {
	s.run.add(levelInfo, s.component, format, args...)
}

func (s *ScopedLog) Warnf(format string, args ...any) {
	s.run.add(levelWarn, s.component, format, args...)
}

func (s *ScopedLog) Errorf(format string, args ...any) {
	s.run.add(levelError, s.component, format, args...)
}
