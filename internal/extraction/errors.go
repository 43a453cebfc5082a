package extraction

import (
	"errors"
	"fmt"
)

// Kind classifies an extraction failure
type Kind int

const (
	// KindInput is a problem with the caller's URL or its content (400)
	KindInput Kind = iota
	// KindConfig is an operator configuration problem (500)
	KindConfig
	// KindUpstream is a language model call or parse failure (500)
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input_error"
	case KindConfig:
		return "config_error"
	case KindUpstream:
		return "upstream_error"
	}
	return "unknown"
}

// Error is a terminal extraction failure
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the failure kind to an HTTP status
func (e *Error) StatusCode() int {
	if e.Kind == KindInput {
		return 400
	}
	return 500
}

func inputError(message string, err error) *Error {
	return &Error{Kind: KindInput, Message: message, Err: err}
}

func configError(message string, err error) *Error {
	return &Error{Kind: KindConfig, Message: message, Err: err}
}

func upstreamError(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindUpstream for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// Failure messages surfaced to callers
const (
	MsgInvalidURL         = "invalid url"
	MsgNoTranscript       = "no transcript available"
	MsgFetchFailed        = "failed to fetch page"
	MsgInsufficientText   = "insufficient text"
	MsgNotConfigured      = "language model is not configured"
	MsgModelFailed        = "language model request failed"
	MsgModelInvalidOutput = "language model returned invalid output"
)
