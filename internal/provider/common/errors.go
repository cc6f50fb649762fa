package common

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRepository = errors.New("invalid repository reference")
	ErrUnexpectedStatus  = errors.New("unexpected status code")
	ErrMalformedResponse = errors.New("malformed response body")
	ErrUnauthorized      = errors.New("credentials rejected")
	ErrRejected          = errors.New("request rejected by server")
)

// ExtractErrorMessage returns the human readable part of an API error.
// GitHub client errors embed it as "Message:<text>]" after the request
// line; anything else is returned unchanged.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	idx := strings.LastIndex(msg, "Message:")
	if idx == -1 {
		return msg
	}

	text := msg[idx+len("Message:"):]
	if end := strings.IndexAny(text, "}]"); end != -1 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}
