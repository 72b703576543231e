package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/twiced-technology-gmbh/agenda/internal/agenda"
)

// JSON writes data as indented JSON.
func JSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes a structured error as JSON. Write failures are ignored.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	_ = JSON(w, ErrorResponse{Error: msg, Code: code, Details: details})
}

// ViewResult is the JSON document of one agenda run.
type ViewResult struct {
	View     string           `json:"view"`
	Date     string           `json:"date"`
	Sections []agenda.Section `json:"sections"`
	Warnings []string         `json:"warnings,omitempty"`
}
