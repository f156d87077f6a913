package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aifix/internal/config"
)

// ErrEmptyResponse is returned when Gemini answers without any text.
var ErrEmptyResponse = errors.New("gemini: answer contained no text")

const apiKeyHeader = "x-goog-api-key"

// gemini calls models/<model>:generateContent once per Complete.
type gemini struct {
	url    string
	apiKey string
	client *http.Client
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *apiError `json:"error"`
}

func generateURL(endpoint string) string {
	return strings.TrimRight(endpoint, "/") + "/v1beta/models/" + config.Model + ":generateContent"
}

func (g *gemini) Name() string { return "gemini" }

func (g *gemini) Complete(ctx context.Context, req Request) (Response, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
	})
	if err != nil {
		return Response{}, fmt.Errorf("encoding gemini request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, g.apiKey)

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("gemini request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("reading gemini answer: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return Response{}, newStatusError(httpResp.StatusCode, raw)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{}, fmt.Errorf("decoding gemini answer: %w", err)
	}
	text, err := out.text()
	if err != nil {
		return Response{}, err
	}
	return Response{Text: text}, nil
}

// text joins the parts of the first candidate, which is what Gemini's own
// SDKs return as the answer text.
func (r generateResponse) text() (string, error) {
	if r.Error != nil {
		return "", fmt.Errorf("gemini: %s", r.Error.Message)
	}
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini: prompt blocked (%s)", r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
