package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FieldError is one server-reported validation message.
type FieldError struct {
	Field   string
	Message string
}

// Error is a non-2xx backend response.
// Fields keep the order the server sent them in.
type Error struct {
	StatusCode int
	Detail     string
	Fields     []FieldError
}

func (e *Error) Error() string {
	if msg := e.FirstMessage(""); msg != "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("http %d", e.StatusCode)
}

// FirstMessage returns "field: message" for the first field error, then the detail,
// then fallback.
func (e *Error) FirstMessage(fallback string) string {
	if len(e.Fields) > 0 {
		f := e.Fields[0]
		return fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// JoinedMessage returns the detail, or every field error joined with ", ", or fallback.
func (e *Error) JoinedMessage(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) == 0 {
		return fallback
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(parts, ", ")
}

// parseError decodes a DRF-style error body: {"detail": "..."} and/or
// {"field": ["msg", ...]} / {"field": "msg"}. Bodies that are not a JSON object
// produce an Error without messages.
func parseError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return apiErr
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return apiErr
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return apiErr
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return apiErr
		}
		msg, ok := messageOf(raw)
		if !ok {
			continue
		}
		if key == "detail" {
			apiErr.Detail = msg
			continue
		}
		apiErr.Fields = append(apiErr.Fields, FieldError{Field: key, Message: msg})
	}
	return apiErr
}

func messageOf(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", false
		}
		return messageOf(list[0])
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || strings.HasPrefix(trimmed, "{") {
		return "", false
	}
	return trimmed, true
}
