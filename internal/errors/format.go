package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatForUser returns a user-friendly error message.
// If debug is true, includes the underlying cause and details.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	ne, ok := As(err)
	if !ok {
		return err.Error()
	}

	var sb strings.Builder

	sb.WriteString("Error: ")
	sb.WriteString(ne.Message)
	sb.WriteString("\n")

	if ne.Suggestion != "" {
		sb.WriteString("\nSuggestion: ")
		sb.WriteString(ne.Suggestion)
		sb.WriteString("\n")
	}

	if debug {
		for _, k := range []string{"component", "path", "diagnostic"} {
			if v := ne.Details[k]; v != "" {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
			}
		}
		if ne.Cause != nil {
			sb.WriteString(fmt.Sprintf("  cause: %v\n", ne.Cause))
		}
	}

	sb.WriteString(fmt.Sprintf("\n[%s]", ne.Code))

	return sb.String()
}

// FormatForCLI formats an error for CLI output.
// Uses a concise format suitable for terminal display.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	ne, ok := As(err)
	if !ok {
		ne = Wrap(ErrCodeInternal, err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", ne.Message))

	if ne.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  Hint: %s\n", ne.Suggestion))
	}

	sb.WriteString(fmt.Sprintf("  Code: %s\n", ne.Code))

	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Category   string            `json:"category"`
	Severity   string            `json:"severity"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	Retryable  bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	ne, ok := As(err)
	if !ok {
		ne = Wrap(ErrCodeInternal, err)
	}

	je := jsonError{
		Code:       ne.Code,
		Message:    ne.Message,
		Category:   string(ne.Category),
		Severity:   string(ne.Severity),
		Details:    ne.Details,
		Suggestion: ne.Suggestion,
		Retryable:  ne.Retryable,
	}

	if ne.Cause != nil {
		je.Cause = ne.Cause.Error()
	}

	return json.Marshal(je)
}

// LogAttrs formats an error as key-value pairs for slog.
func LogAttrs(err error) []any {
	if err == nil {
		return nil
	}

	ne, ok := As(err)
	if !ok {
		return []any{"error", err.Error()}
	}

	attrs := []any{
		"error_code", ne.Code,
		"error", ne.Message,
		"category", string(ne.Category),
	}
	for _, k := range []string{"component", "path", "diagnostic"} {
		if v := ne.Details[k]; v != "" {
			attrs = append(attrs, k, v)
		}
	}
	return attrs
}
