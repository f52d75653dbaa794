package cpm

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxBodyInMessage bounds how much of a response body an error message embeds.
const maxBodyInMessage = 512

// HTTPError is returned when the API answers with a non-2xx status.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Detail())
}

// Detail returns the server's explanation of the failure. When the body is
// the API's error envelope the messages are extracted, otherwise the trimmed
// body text is used.
func (e *HTTPError) Detail() string {
	var envelope struct {
		Errors []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(e.Body), &envelope); err == nil && len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, item := range envelope.Errors {
			switch {
			case item.Message != "":
				msgs = append(msgs, item.Message)
			case item.Code != "":
				msgs = append(msgs, item.Code)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	body := strings.TrimSpace(e.Body)
	if body == "" {
		return "(empty body)"
	}
	if len(body) > maxBodyInMessage {
		cut := maxBodyInMessage
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return body
}

// TransportError wraps a failure to send the request or read the response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is returned when a 2xx body is not valid JSON for the payload.
type DecodeError struct {
	Status int
	Body   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %d response: %v", e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
