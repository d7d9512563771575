package importer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Decode converts raw file bytes to a string. Belgian bank exports are
// often Windows-1252; "auto" keeps valid UTF-8 and decodes anything else
// as Windows-1252. A leading byte-order mark is dropped.
func Decode(data []byte, encoding string) (string, error) {
	var out string
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "auto":
		if utf8.Valid(data) {
			out = string(data)
		} else {
			b, err := charmap.Windows1252.NewDecoder().Bytes(data)
			if err != nil {
				return "", fmt.Errorf("decoding windows-1252: %w", err)
			}
			out = string(b)
		}
	case "utf-8", "utf8":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("file is not valid UTF-8")
		}
		out = string(data)
	case "windows-1252", "cp1252":
		b, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding windows-1252: %w", err)
		}
		out = string(b)
	case "iso-8859-1", "latin1", "latin-1":
		b, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding iso-8859-1: %w", err)
		}
		out = string(b)
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
	return strings.TrimPrefix(out, bom), nil
}
