package rewrite

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aifix/internal/output"
	"aifix/internal/provider"
)

// stubProvider returns a canned answer and records every request.
type stubProvider struct {
	content string
	err     error
	calls   []provider.Request
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, req provider.Request) (provider.Response, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return provider.Response{}, s.err
	}
	return provider.Response{Text: s.content}, nil
}

func newRunner(t *testing.T, p provider.Provider) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	sink, err := output.NewSink(output.Options{Console: &buf})
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	t.Cleanup(func() { sink.Close() })
	return &Runner{Provider: p, Sink: sink}, &buf
}

func writeTarget(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calc.py")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// --- LoadRequest tests ---

func TestLoadRequest(t *testing.T) {
	path := writeTarget(t, "print('hi')\n")

	req, err := LoadRequest(path, "make it louder")
	if err != nil {
		t.Fatalf("LoadRequest: %v", err)
	}
	if req.FilePath != path || req.Instruction != "make it louder" {
		t.Fatalf("request = %+v", req)
	}
	if req.OriginalContent != "print('hi')\n" {
		t.Fatalf("content = %q", req.OriginalContent)
	}
}

func TestLoadRequestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.py")

	_, err := LoadRequest(path, "x")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	var nf *FileNotFoundError
	if !errors.As(err, &nf) || nf.Path != path {
		t.Fatalf("expected FileNotFoundError for %q, got %v", path, err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("error %q does not name the path", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected the underlying os.ErrNotExist to be preserved")
	}
}

func TestLoadRequestDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRequest(dir, "x")
	var re *ReadError
	if !errors.As(err, &re) {
		t.Fatalf("expected ReadError, got %T: %v", err, err)
	}
	if errors.Is(err, ErrFileNotFound) {
		t.Fatal("a directory must not be reported as not found")
	}
}

func TestLoadRequestInvalidUTF8(t *testing.T) {
	path := writeTarget(t, "\xff\xfe\x00bad")

	_, err := LoadRequest(path, "x")
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

// --- Runner tests ---

func TestExecuteEndToEnd(t *testing.T) {
	original := "def add(a, b): return a - b"
	path := writeTarget(t, original)
	stub := &stubProvider{content: "```python\ndef add(a, b):\n    return a + b\n```"}
	runner, buf := newRunner(t, stub)

	result, err := runner.Execute(context.Background(), path, "fix the bug: this should add, not subtract")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	fixed := "def add(a, b):\n    return a + b"
	if result.Sanitized != fixed {
		t.Fatalf("sanitized = %q, want %q", result.Sanitized, fixed)
	}
	if result.Raw != stub.content {
		t.Fatalf("raw = %q", result.Raw)
	}

	out := buf.String()
	if n := strings.Count(out, original); n != 1 {
		t.Errorf("original content printed %d times, want 1:\n%s", n, out)
	}
	if n := strings.Count(out, fixed); n != 1 {
		t.Errorf("fixed code printed %d times, want 1:\n%s", n, out)
	}
	if strings.Contains(out, "```") {
		t.Errorf("fence leaked into output:\n%s", out)
	}
	if len(stub.calls) != 1 {
		t.Fatalf("provider called %d times, want 1", len(stub.calls))
	}
}

func TestExecuteOutputOrder(t *testing.T) {
	path := writeTarget(t, "x = 1")
	runner, buf := newRunner(t, &stubProvider{content: "x = 2"})

	if _, err := runner.Execute(context.Background(), path, "bump"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	sep := output.Separator
	want := strings.Join([]string{
		sep,
		"Target file: " + path,
		"Instruction: bump",
		sep,
		"File loaded.",
		"[Loaded content]",
		"x = 1",
		sep,
		"Requesting code changes from the AI...",
		"AI code generation complete.",
		sep,
		"AI generated code:",
		"x = 2",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Fatalf("output mismatch\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestExecuteSendsBuiltPrompt(t *testing.T) {
	path := writeTarget(t, "body")
	stub := &stubProvider{content: "ok"}
	runner, _ := newRunner(t, stub)

	if _, err := runner.Execute(context.Background(), path, "instr"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(stub.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(stub.calls))
	}
	if got := stub.calls[0].Prompt; got != BuildPrompt("instr", "body") {
		t.Fatalf("prompt = %q", got)
	}
}

func TestExecuteMissingFileSkipsProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.py")
	stub := &stubProvider{content: "unused"}
	runner, buf := newRunner(t, stub)

	_, err := runner.Execute(context.Background(), path, "x")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("provider called %d times, want 0", len(stub.calls))
	}
	if !strings.Contains(buf.String(), "Target file: "+path) {
		t.Fatalf("expected banner before failure, got:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "File loaded.") {
		t.Fatalf("load confirmation printed for a missing file")
	}
}

func TestRunProviderFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	runner, buf := newRunner(t, &stubProvider{err: boom})

	_, err := runner.Run(context.Background(), Request{FilePath: "f", Instruction: "i", OriginalContent: "c"})

	var pf *ProviderFailure
	if !errors.As(err, &pf) {
		t.Fatalf("expected ProviderFailure, got %T: %v", err, err)
	}
	if pf.Provider != "stub" || !errors.Is(err, boom) {
		t.Fatalf("failure = %+v", pf)
	}
	if strings.Contains(buf.String(), "AI code generation complete.") {
		t.Fatalf("completion notice printed after failure:\n%s", buf.String())
	}
}
