package newsapi

import (
	"fmt"
	"strings"
)

// TransportError is the single failure type of Client: connection problems,
// timeouts, non-2xx responses and malformed payloads all surface as one.
type TransportError struct {
	Op         string
	StatusCode int    // 0 when no response was received
	Code       string // NewsAPI error code, e.g. "apiKeyInvalid"
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	var sb strings.Builder
	sb.WriteString("newsapi: ")
	sb.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " %d", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&sb, " (%s)", e.Code)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Detail returns the most user-presentable part of the error.
func (e *TransportError) Detail() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	default:
		return ""
	}
}
