package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Title      string            `json:"title,omitempty"`
	Message    string            `json:"message"`
	Cause      string            `json:"cause,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// DetailFor converts err into its structured form.
func DetailFor(err error) ErrorDetail {
	var pe *presaleerr.PresaleError
	if !errors.As(err, &pe) {
		return ErrorDetail{
			Code:     "GENERAL_ERROR",
			Message:  err.Error(),
			ExitCode: presaleerr.ExitGeneral,
		}
	}
	d := ErrorDetail{
		Code:       pe.Code,
		Title:      pe.Title,
		Message:    pe.Message,
		Details:    pe.Details,
		Suggestion: pe.Suggestion,
		ExitCode:   pe.ExitCode,
	}
	if pe.Cause != nil {
		d.Cause = pe.Cause.Error()
	}
	return d
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ErrorOutput{Error: DetailFor(err)})
	}
	return formatErrorText(w, DetailFor(err))
}

func formatErrorText(w io.Writer, d ErrorDetail) error {
	var sb strings.Builder

	if d.Title != "" && !strings.EqualFold(d.Title, d.Message) {
		fmt.Fprintf(&sb, "Error: %s: %s\n", d.Title, d.Message)
	} else {
		fmt.Fprintf(&sb, "Error: %s\n", d.Message)
	}
	if d.Cause != "" {
		fmt.Fprintf(&sb, "  caused by: %s\n", d.Cause)
	}

	if len(d.Details) > 0 {
		keys := make([]string, 0, len(d.Details))
		for k := range d.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("\nDetails:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, d.Details[k])
		}
	}

	if d.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", d.Suggestion)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{"status": "success", "message": message})
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
