package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"aifix/internal/config"
	"aifix/internal/output"
	"aifix/internal/provider"
	"aifix/internal/rewrite"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// Parsed holds parsed CLI arguments.
type Parsed struct {
	FilePath string // positional target file
	Prompt   string // --prompt / -p
	Silent   bool   // --silent / -s
	Log      bool   // --log
	Debug    bool   // --debug (implies --log)
}

// Options wires the CLI to its environment.  Zero values select the real
// implementations.
type Options struct {
	Stdout  io.Writer
	Stderr  io.Writer
	BaseDir string

	// NewProvider builds the completion provider.  Defaults to provider.New.
	NewProvider func(cfg config.Config, opts provider.Options) (provider.Provider, error)

	// Now overrides the sink clock for deterministic log names.
	Now func() time.Time
}

// exitError carries an exit code for failures that were already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// Run executes the CLI command and returns an exit code.
func Run(args []string, stdout, stderr io.Writer, baseDir string) int {
	return Execute(context.Background(), args, Options{
		Stdout:  stdout,
		Stderr:  stderr,
		BaseDir: baseDir,
	})
}

// Execute loads configuration, parses args and runs the rewrite request.
// Configuration is checked first so a missing API key fails before any
// command logic runs.
func Execute(ctx context.Context, args []string, opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.NewProvider == nil {
		opts.NewProvider = provider.New
	}

	cfg, err := config.Load(opts.BaseDir)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "configuration error: %v\n", err)
		return exitFailure
	}

	var parsed Parsed
	cmd := newRootCommand(&parsed, func(cmd *cobra.Command) error {
		return runRewrite(cmd.Context(), parsed, cfg, opts)
	})
	if args == nil {
		// cobra falls back to os.Args when no args are set.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintf(opts.Stderr, "Error: %v\n", err)
		fmt.Fprint(opts.Stderr, cmd.UsageString())
		return exitUsage
	}
	return exitOK
}

func newRootCommand(p *Parsed, run func(cmd *cobra.Command) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aifix <file_path> --prompt <instruction>",
		Short: "Rewrite or debug a source file with AI",
		Long: `aifix sends a source file and an instruction to Gemini and prints the
modified code.  The file itself is never changed.

Examples:
  $ aifix calc.py -p "fix the bug: this should add, not subtract"
  $ aifix main.py --prompt "add type hints" --log`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p.FilePath = args[0]
			if p.Debug {
				p.Log = true
			}
			return run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&p.Prompt, "prompt", "p", "", "instruction for the AI (required)")
	flags.BoolVarP(&p.Silent, "silent", "s", false, "print only the generated code")
	flags.BoolVar(&p.Log, "log", false, "write a session log to .aifix/log/")
	flags.BoolVar(&p.Debug, "debug", false, "also log raw provider requests and responses (implies --log)")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

// runRewrite handles one request with output sink, provider, and logging.
func runRewrite(ctx context.Context, p Parsed, cfg config.Config, opts Options) error {
	sink, err := output.NewSink(output.Options{
		Silent:  p.Silent,
		Log:     p.Log,
		BaseDir: opts.BaseDir,
		Console: opts.Stdout,
		Now:     opts.Now,
	})
	if err != nil {
		return fail(opts.Stderr, nil, fmt.Errorf("output error: %w", err))
	}
	defer sink.Close()

	if p.Debug {
		cfg.LogLevel = "DEBUG"
	}

	headerArgs := map[string]string{"model": config.Model}
	if p.Silent {
		headerArgs["silent"] = "true"
	}
	if p.Log {
		headerArgs["log"] = "true"
	}
	if cfg.Debug() {
		headerArgs["debug"] = "true"
	}
	sink.WriteHeader(headerArgs, p.FilePath, p.Prompt)

	for _, w := range cfg.Warnings {
		fmt.Fprintf(opts.Stderr, "warning: %s\n", w)
		sink.EmitLog(output.EventERR, w)
	}

	// Inform user where the log file is being written.
	if logPath := sink.LogPath(); logPath != "" {
		fmt.Fprintf(opts.Stderr, "log: %s\n", logPath)
	}

	prov, err := opts.NewProvider(cfg, provider.Options{DebugLogPath: sink.LogPath()})
	if err != nil {
		return fail(opts.Stderr, sink, fmt.Errorf("provider error: %w", err))
	}

	runner := &rewrite.Runner{Provider: prov, Sink: sink}
	if _, err := runner.Execute(ctx, p.FilePath, p.Prompt); err != nil {
		return fail(opts.Stderr, sink, err)
	}
	return nil
}

// fail reports err on stderr and in the session log and returns an exitError.
func fail(stderr io.Writer, sink *output.Sink, err error) error {
	msg := err.Error()
	fmt.Fprintln(stderr, msg)
	if sink != nil {
		sink.EmitLog(output.EventERR, msg)
	}
	return &exitError{code: exitFailure, err: err}
}
