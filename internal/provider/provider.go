// Package provider talks to the completion service.
//
// aifix makes exactly one request per run: a single user prompt in, a single
// block of text out.  New returns the Gemini client that does this.
package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"aifix/internal/config"
)

// Request is the prompt sent to the model.
type Request struct {
	Prompt string
}

// Response is the model's complete answer.
type Response struct {
	Text string
}

// Provider is implemented by the Gemini client and by test stubs.
type Provider interface {
	// Name identifies the backend in error messages.
	Name() string

	// Complete blocks until the full answer arrives or the call fails.
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrAuthRequired is returned when no API key was configured.
var ErrAuthRequired = errors.New("authentication required: set " + config.APIKeyEnv + " in " + config.EnvFileName + " or the environment")

// ErrEndpointRequired is returned when no endpoint is configured.
var ErrEndpointRequired = errors.New("endpoint required: set endpoint in .aifix/config.yaml or AIFIX_ENDPOINT")

// Options tunes client construction.
type Options struct {
	// HTTPClient is copied and used for the request.  Nil means a zero
	// http.Client, whose transport has no request timeout.
	HTTPClient *http.Client

	// DebugLogPath receives a trace of the request and response when the
	// config log level is DEBUG.
	DebugLogPath string
}

// New builds the Gemini client for cfg.
func New(cfg config.Config, opts Options) (Provider, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrEndpointRequired
	}
	if cfg.APIKey == "" {
		return nil, ErrAuthRequired
	}

	client := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		client = &copied
	}
	if cfg.Debug() && strings.TrimSpace(opts.DebugLogPath) != "" {
		client.Transport = traceTransport{next: client.Transport, path: opts.DebugLogPath}
	}

	return &gemini{
		url:    generateURL(cfg.Endpoint),
		apiKey: cfg.APIKey,
		client: client,
	}, nil
}
