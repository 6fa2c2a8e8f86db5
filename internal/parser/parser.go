package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/edamaster-cli/internal/table"
)

// Options controls how tabular files are read.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension (tab for .tsv, comma otherwise).
	Delimiter rune
	// SheetName selects an XLSX sheet by name; empty falls back to SheetIndex.
	SheetName string
	// SheetIndex is the 1-based XLSX sheet position (default first sheet).
	SheetIndex int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

// Parser turns one tabular file into ordered rows keyed by header name.
type Parser interface {
	CanParse(filename string) bool
	Parse(filename string, r io.Reader, opt Options) ([]table.Row, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// Parse selects a parser based on filename and reads all rows from r.
// Files with no matching parser are read as CSV.
func Parse(filename string, r io.Reader, opt Options) ([]table.Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls", ".ods", ".docx", ".pdf":
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupported)
	}
	for _, p := range registry {
		if p.CanParse(filename) {
			return p.Parse(filename, r, opt)
		}
	}
	return csvParser{}.Parse(filename, r, opt)
}

// buildRows maps raw records onto the header. The first record is the header;
// duplicate header names get a numeric suffix so every column stays addressable.
func buildRows(records [][]string) []table.Row {
	if len(records) == 0 {
		return nil
	}
	header := uniqueHeader(records[0])
	rows := make([]table.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		vals := make([]table.Value, len(rec))
		for i, raw := range rec {
			vals[i] = table.Infer(raw)
		}
		rows = append(rows, table.NewRow(header, vals))
	}
	return rows
}

func uniqueHeader(cols []string) []string {
	out := make([]string, len(cols))
	seen := make(map[string]int, len(cols))
	taken := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		taken[c] = struct{}{}
	}
	for i, c := range cols {
		n, dup := seen[c]
		seen[c] = n + 1
		if !dup {
			out[i] = c
			continue
		}
		name := c + "_" + strconv.Itoa(n)
		for {
			if _, clash := taken[name]; !clash {
				break
			}
			n++
			seen[c] = n + 1
			name = c + "_" + strconv.Itoa(n)
		}
		taken[name] = struct{}{}
		out[i] = name
	}
	return out
}

func init() {
	// Register default parsers
	Register(csvParser{})
	Register(xlsxParser{})
}

// ErrUnsupported indicates a format is not supported yet.
var ErrUnsupported = errors.New("unsupported table format")
