package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kilianp07/sprintplan/core/model"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatHTML Format = "html"
)

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "htm" {
		ext = "html"
	}
	return ParseFormat(ext)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// Write encodes doc to w in format f. CSV carries the ledger only.
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatCSV:
		return WriteCSV(w, doc.Entries)
	case FormatXLSX:
		return WriteXLSX(w, doc)
	case FormatHTML:
		return WriteHTMLChart(w, doc)
	}
	return fmt.Errorf("unsupported export format %q", string(f))
}

// ReadLedger decodes the entries of an edited ledger in format f.
func ReadLedger(r io.Reader, f Format) ([]model.Entry, error) {
	switch f {
	case FormatJSON:
		doc, err := ReadJSON(r)
		return doc.Entries, err
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	}
	return nil, fmt.Errorf("format %q cannot be read back", string(f))
}
