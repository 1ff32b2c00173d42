package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrSessionExpired is returned when the platform rejects the caller's token.
var ErrSessionExpired = errors.New("session expired, please sign in again")

// APIError is a non-2xx response from the platform. Message is safe to show
// to users.
type APIError struct {
	StatusCode int                 `json:"status_code"`
	Message    string              `json:"message"`
	Fields     map[string][]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NotFound reports whether the platform answered 404.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

var envelopeKeys = map[string]bool{
	"detail":  true,
	"message": true,
	"error":   true,
	"success": true,
	"status":  true,
	"code":    true,
}

// newAPIError extracts a readable message from an error body: field-level
// validation details when present, else detail/message/error, else a generic
// message naming the status.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Message:    fmt.Sprintf("request failed with status %d", status),
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return apiErr
	}

	fieldSource := obj
	if nested, ok := obj["errors"]; ok {
		var inner map[string]json.RawMessage
		if json.Unmarshal(nested, &inner) == nil {
			fieldSource = inner
		}
	}

	fields := make(map[string][]string)
	for key, raw := range fieldSource {
		if envelopeKeys[key] || key == "errors" {
			continue
		}
		if msgs := messages(raw); len(msgs) > 0 {
			fields[key] = msgs
		}
	}

	if len(fields) > 0 {
		apiErr.Fields = fields
		apiErr.Message = formatFields(fields)
		return apiErr
	}

	for _, key := range []string{"detail", "message", "error"} {
		if msgs := messages(obj[key]); len(msgs) > 0 {
			apiErr.Message = strings.Join(msgs, " ")
			return apiErr
		}
	}

	return apiErr
}

func messages(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var one string
	if json.Unmarshal(raw, &one) == nil {
		if one == "" {
			return nil
		}
		return []string{one}
	}

	var many []string
	if json.Unmarshal(raw, &many) == nil {
		return many
	}
	return nil
}

func formatFields(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		msg := strings.Join(fields[k], ", ")
		if k == "non_field_errors" {
			parts = append(parts, msg)
			continue
		}
		parts = append(parts, k+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrSessionExpired):
		return ErrSessionExpired.Error()
	default:
		return "unable to reach the school server, please try again"
	}
}
