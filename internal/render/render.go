// Package render writes sales summaries as a terminal chart, CSV or JSON.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"possales/internal/report"
)

// Format names an output format.
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts text, csv and json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be one of text, csv, json", s)
	}
}

// Write renders s to w in format f.
func Write(w io.Writer, f Format, s report.Summary) error {
	switch f {
	case FormatCSV:
		return CSV(w, s)
	case FormatJSON:
		return JSON(w, s)
	case FormatText, "":
		return Text(w, s, TextOptions{Color: IsTerminal(w)})
	default:
		return fmt.Errorf("invalid format %q", f)
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
