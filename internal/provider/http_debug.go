package provider

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// traceTransport appends each Gemini request and response to the session log.
type traceTransport struct {
	next http.RoundTripper
	path string
}

func (t traceTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	sent, err := requestBody(req)
	if err != nil {
		return nil, fmt.Errorf("debug trace: reading request body: %w", err)
	}
	t.append("request", fmt.Sprintf("%s %s\n%s: %s\n\n%s\n",
		req.Method, req.URL, apiKeyHeader, maskKey(req.Header.Get(apiKeyHeader)), sent))

	resp, err := next.RoundTrip(req)
	if err != nil {
		t.append("transport error", err.Error()+"\n")
		return nil, err
	}

	received, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.append("response read error", err.Error()+"\n")
		return nil, fmt.Errorf("debug trace: reading response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(received))
	t.append("response", fmt.Sprintf("%s\n\n%s\n", resp.Status, received))

	return resp, nil
}

// requestBody returns a copy of the body without consuming req.Body when the
// request can replay it.
func requestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	return data, nil
}

// maskKey keeps only the last four characters of the API key.
func maskKey(key string) string {
	switch {
	case key == "":
		return "<unset>"
	case len(key) <= 4:
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// append writes one block.  Trace output is best effort; a log that cannot
// be opened never fails the request.
func (t traceTransport) append(title, body string) {
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "\n=== gemini %s ===\n%s", title, body)
}
