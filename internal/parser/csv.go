package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/edamaster-cli/internal/table"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

// Parse reads a delimited file with a header row. Blank lines are skipped,
// a UTF-8 byte order mark is dropped and every cell goes through
// table.Infer.
func (csvParser) Parse(filename string, r io.Reader, opt Options) ([]table.Row, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(filename)
	}
	// Strip a leading BOM so it does not end up in the first column name.
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return buildRows(records), nil
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}

// ParseDelimiter maps a user-facing delimiter name to a rune. Empty input
// returns 0 (auto).
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s", s)
	}
}
