// Package output writes aifix's console lines and the optional session log.
//
// The console gets every progress line unless the sink is silent, in which
// case only the generated code is printed.  When logging is on, every event
// is also appended to .aifix/log/aifix-log-<timestamp>.log.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// EventKind tags a session-log entry.
type EventKind string

const (
	EventInfo   EventKind = "INFO"
	EventSource EventKind = "SOURCE"
	EventPrompt EventKind = "PROMPT" // log only
	EventAI     EventKind = "AI"
	EventERR    EventKind = "ERR"
)

// Separator is the rule printed between sections of the run.
var Separator = strings.Repeat("-", 40)

const (
	fileStamp  = "20060102.150405"
	entryStamp = "15:04:05.000"
	startStamp = "2006-01-02 15:04:05"
)

// Options configures NewSink.
type Options struct {
	Silent  bool      // only EmitFinal reaches Console
	Log     bool      // create a session log under BaseDir/.aifix/log
	BaseDir string    // directory holding .aifix
	Console io.Writer // nil discards

	// Now replaces time.Now, for stable log names in tests.
	Now func() time.Time
}

// Sink fans aifix events out to the console and session log.  It is safe
// for concurrent use.
type Sink struct {
	mu     sync.Mutex
	out    io.Writer
	quiet  bool
	clock  func() time.Time
	log    *os.File
	logged string
}

// NewSink returns a Sink for opts.  With Log set the log file is created
// here, so an unwritable BaseDir is reported before any work starts.
func NewSink(opts Options) (*Sink, error) {
	s := &Sink{out: opts.Console, quiet: opts.Silent, clock: opts.Now}
	if s.out == nil {
		s.out = io.Discard
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if !opts.Log {
		return s, nil
	}

	dir := filepath.Join(opts.BaseDir, ".aifix", "log")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	path := filepath.Join(dir, "aifix-log-"+s.clock().Format(fileStamp)+".log")
	// O_APPEND: the Gemini trace transport appends to the same file.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}
	s.log, s.logged = f, path
	return s, nil
}

// WriteHeader starts the session log with the run's target, instruction
// and options.  Without a log it does nothing.
func (s *Sink) WriteHeader(options map[string]string, filePath, instruction string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.log == nil {
		return
	}

	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + "=" + options[name]
	}

	fmt.Fprintf(s.log, "aifix session started %s\nfile: %s\ninstruction: %s\noptions: %s\n%s\n",
		s.clock().Format(startStamp), filePath, instruction, strings.Join(pairs, " "), Separator)
}

// Emit prints text unless the sink is silent, and logs it as kind.
func (s *Sink) Emit(kind EventKind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.quiet {
		fmt.Fprintln(s.out, text)
	}
	s.record(kind, text)
}

// Rule emits Separator.
func (s *Sink) Rule() { s.Emit(EventInfo, Separator) }

// EmitLog logs text without printing it.
func (s *Sink) EmitLog(kind EventKind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(kind, text)
}

// EmitFinal prints the generated code, silent or not.
func (s *Sink) EmitFinal(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, code)
	s.record(EventAI, code)
}

func (s *Sink) record(kind EventKind, text string) {
	if s.log != nil {
		fmt.Fprintf(s.log, "%s %-6s %s\n", s.clock().Format(entryStamp), kind, text)
	}
}

// LogPath is the session log's path, or "" when there is none.
func (s *Sink) LogPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logged
}

// Close closes the session log.  Later calls are no-ops.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.log == nil {
		return nil
	}
	err := s.log.Close()
	s.log, s.logged = nil, ""
	return err
}
