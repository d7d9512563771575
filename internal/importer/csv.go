package importer

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/ledenadmin/ledenadmin/internal/model"
)

// CSVFormat parses generic bank CSV exports with a header row.
type CSVFormat struct{}

// Name returns the format name.
func (CSVFormat) Name() string { return FormatCSV }

// DefaultMethod returns the method for generic CSV rows.
func (CSVFormat) DefaultMethod() model.PaymentMethod { return model.MethodTransfer }

// Parse implements Format.
func (CSVFormat) Parse(content string) ParseResult { return ParseCSV(content) }

// ParseCSV reads a delimited file whose first line is the header row.
// The delimiter is a comma or a semicolon, whichever the header uses most.
// Every data row must have as many columns as the header.
func ParseCSV(content string) ParseResult {
	content = strings.TrimPrefix(content, bom)
	if strings.TrimSpace(content) == "" {
		return failf("file is empty")
	}

	cr := csv.NewReader(strings.NewReader(content))
	cr.Comma = detectDelimiter(content)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return failf("reading header: %v", err)
	}
	headers := uniqueHeaders(header)

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return failf("reading CSV: %v", err)
		}
		if blankRecord(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != len(headers) {
			return failf("line %d: expected %d columns, got %d", line, len(headers), len(rec))
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			row[h] = rec[i]
		}
		rows = append(rows, row)
	}

	return ParseResult{Success: true, Headers: headers, Rows: rows}
}

// blankRecord reports whether every field is empty or whitespace, as for a
// line of spaces or a trailing ";;;" row.
func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// detectDelimiter counts commas and semicolons outside quotes on the first
// non-empty line.
func detectDelimiter(content string) rune {
	first := ""
	for _, l := range splitLines(content) {
		if strings.TrimSpace(l) != "" {
			first = l
			break
		}
	}
	commas, semis := 0, 0
	inQuotes := false
	for _, r := range first {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				commas++
			}
		case ';':
			if !inQuotes {
				semis++
			}
		}
	}
	if semis > commas {
		return ';'
	}
	return ','
}

// uniqueHeaders trims header names, names blank columns and suffixes
// duplicates so every column stays addressable.
func uniqueHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "column " + strconv.Itoa(i+1)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = h + " (" + strconv.Itoa(n) + ")"
		}
		out[i] = h
	}
	return out
}
