package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const maxBodyInError = 200

// apiError is the "error" object Gemini returns with non-200 answers.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
	Details []struct {
		Reason string `json:"reason"`
	} `json:"details"`
}

// StatusError is a non-200 answer from Gemini with a hint for fixing it.
type StatusError struct {
	StatusCode int
	Status     string // Gemini status, e.g. RESOURCE_EXHAUSTED
	Message    string
	Hint       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("gemini: HTTP %d", e.StatusCode)
	if e.Status != "" {
		msg += " " + e.Status
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// newStatusError reads Gemini's error body and attaches an aifix-specific hint.
func newStatusError(code int, body []byte) *StatusError {
	se := &StatusError{StatusCode: code}

	var envelope struct {
		Error *apiError `json:"error"`
	}
	keyRejected := false
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		se.Status = envelope.Error.Status
		se.Message = envelope.Error.Message
		for _, d := range envelope.Error.Details {
			if d.Reason == "API_KEY_INVALID" {
				keyRejected = true
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" {
		if len(text) > maxBodyInError {
			text = text[:maxBodyInError] + "..."
		}
		se.Message = text
	}
	if se.Message == "" {
		se.Message = http.StatusText(code)
	}

	switch {
	case keyRejected, code == http.StatusUnauthorized:
		se.Hint = "check GOOGLE_API_KEY in api.env or the environment"
	case code == http.StatusForbidden:
		se.Hint = "the API key is not allowed to use the Generative Language API"
	case code == http.StatusNotFound:
		se.Hint = "check endpoint in .aifix/config.yaml or AIFIX_ENDPOINT"
	case code == http.StatusTooManyRequests:
		se.Hint = "Gemini quota exhausted; wait and run aifix again"
	case code >= 500:
		se.Hint = "Gemini is unavailable; try again later"
	}
	return se
}
