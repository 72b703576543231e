// Package output renders agenda sections and entries as tables, compact
// lines or JSON.
package output

import (
	"os"
	"strings"
)

// EnvOutput names the environment variable that picks a default format.
const EnvOutput = "AGENDA_OUTPUT"

// Format represents an output format.
type Format int

// Formats. FormatAuto resolves to FormatTable.
const (
	FormatAuto Format = iota
	FormatJSON
	FormatTable
	FormatCompact
)

var formatNames = map[string]Format{
	"json":    FormatJSON,
	"table":   FormatTable,
	"compact": FormatCompact,
	"oneline": FormatCompact,
}

// ParseFormat reads a format name as accepted in AGENDA_OUTPUT.
func ParseFormat(name string) (Format, bool) {
	f, ok := formatNames[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCompact:
		return "compact"
	default:
		return "table"
	}
}

// Detect picks the format from the flags, then AGENDA_OUTPUT. Flags win
// in the order json, compact, table.
func Detect(jsonFlag, tableFlag, compactFlag bool) Format {
	switch {
	case jsonFlag:
		return FormatJSON
	case compactFlag:
		return FormatCompact
	case tableFlag:
		return FormatTable
	}
	if f, ok := ParseFormat(os.Getenv(EnvOutput)); ok {
		return f
	}
	return FormatTable
}
