// Package rewrite implements the single aifix request: load the target file,
// build the fixed prompt, ask the provider once, and print the cleaned-up
// answer.
//
// The flow is linear.  The file is read, the prompt is built, exactly one
// Complete call is made, and the sanitized code is printed.  Nothing is
// written back to the target file.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"aifix/internal/output"
	"aifix/internal/provider"
)

// Request is the input of one invocation.
type Request struct {
	FilePath        string
	Instruction     string
	OriginalContent string
}

// Result holds the provider answer before and after sanitization.
type Result struct {
	Raw       string
	Sanitized string
}

// ErrFileNotFound matches errors returned for a missing target file.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidUTF8 is wrapped in a ReadError when the file is not UTF-8 text.
var ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

// FileNotFoundError reports a target path that does not exist.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("target file not found: %s", e.Path)
}

func (e *FileNotFoundError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFileNotFound) true.
func (e *FileNotFoundError) Is(target error) bool { return target == ErrFileNotFound }

// ReadError reports any other failure to read the target file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("cannot read target file %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ProviderFailure wraps an error returned by the completion provider.
type ProviderFailure struct {
	Provider string
	Err      error
}

func (e *ProviderFailure) Error() string {
	return fmt.Sprintf("code generation failed (%s): %v", e.Provider, e.Err)
}

func (e *ProviderFailure) Unwrap() error { return e.Err }

// LoadRequest reads path as UTF-8 text and pairs it with the instruction.
func LoadRequest(path, instruction string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Request{}, &FileNotFoundError{Path: path, Err: err}
		}
		return Request{}, &ReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return Request{}, &ReadError{Path: path, Err: ErrInvalidUTF8}
	}
	return Request{
		FilePath:        path,
		Instruction:     instruction,
		OriginalContent: string(data),
	}, nil
}

// Runner executes requests against a provider and reports progress to a sink.
type Runner struct {
	Provider provider.Provider
	Sink     *output.Sink
}

// Execute prints the request banner, loads the file and runs the request.
// The banner is printed before the read, so a missing file still shows which
// path and instruction were given.
func (r *Runner) Execute(ctx context.Context, path, instruction string) (Result, error) {
	r.Sink.Rule()
	r.Sink.Emit(output.EventInfo, "Target file: "+path)
	r.Sink.Emit(output.EventInfo, "Instruction: "+instruction)
	r.Sink.Rule()

	req, err := LoadRequest(path, instruction)
	if err != nil {
		return Result{}, err
	}
	return r.Run(ctx, req)
}

// Run echoes the loaded content, sends one completion request and prints
// the sanitized answer.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	r.Sink.Emit(output.EventInfo, "File loaded.")
	r.Sink.Emit(output.EventInfo, "[Loaded content]")
	r.Sink.Emit(output.EventSource, req.OriginalContent)
	r.Sink.Rule()
	r.Sink.Emit(output.EventInfo, "Requesting code changes from the AI...")

	prompt := BuildPrompt(req.Instruction, req.OriginalContent)
	r.Sink.EmitLog(output.EventPrompt, prompt)

	resp, err := r.Provider.Complete(ctx, provider.Request{Prompt: prompt})
	if err != nil {
		return Result{}, &ProviderFailure{Provider: r.Provider.Name(), Err: err}
	}

	result := Result{
		Raw:       resp.Text,
		Sanitized: Sanitize(resp.Text),
	}

	r.Sink.Emit(output.EventInfo, "AI code generation complete.")
	r.Sink.Rule()
	r.Sink.Emit(output.EventInfo, "AI generated code:")
	r.Sink.EmitFinal(result.Sanitized)
	return result, nil
}
