// Package importer turns bank statement files (CSV, MT940, CODA) into
// header-keyed rows and normalizes mapped rows into transactions.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledenadmin/ledenadmin/internal/model"
)

// Row is one line of a parsed file, keyed by column header.
type Row map[string]string

// ParseResult is the outcome of parsing a file. Format problems are
// reported through Success and Error, never as a Go error.
type ParseResult struct {
	Success bool
	Headers []string
	Rows    []Row
	Error   string
}

func failf(format string, args ...any) ParseResult {
	return ParseResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Format is a bank statement file format.
type Format interface {
	Name() string
	// DefaultMethod is the payment method assigned to every imported row.
	DefaultMethod() model.PaymentMethod
	Parse(content string) ParseResult
}

// Format names.
const (
	FormatCSV   = "csv"
	FormatMT940 = "mt940"
	FormatCODA  = "coda"
)

// Registry holds named formats.
type Registry struct {
	formats map[string]Format
	order   []string
}

// NewRegistry creates an empty format registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Format)}
}

// Register adds a format. Panics on duplicate name.
func (r *Registry) Register(f Format) {
	key := strings.ToLower(f.Name())
	if _, ok := r.formats[key]; ok {
		panic("duplicate import format: " + key)
	}
	r.formats[key] = f
	r.order = append(r.order, key)
}

// Get returns the format for name, or nil.
func (r *Registry) Get(name string) Format {
	return r.formats[strings.ToLower(strings.TrimSpace(name))]
}

// Names lists registered formats in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// DefaultRegistry returns a registry with all built-in formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CSVFormat{})
	r.Register(MT940Format{})
	r.Register(CODAFormat{})
	return r
}

// Detect guesses the format of content.
func Detect(content string) string {
	content = strings.TrimPrefix(content, bom)
	lines := splitLines(content)

	for _, l := range lines {
		if strings.HasPrefix(l, ":20:") || strings.HasPrefix(l, ":61:") || strings.Contains(l, "{4:") {
			return FormatMT940
		}
	}

	first := ""
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			first = l
			break
		}
	}
	if strings.HasPrefix(first, "0000") && utf8.RuneCountInString(strings.TrimRight(first, " ")) <= codaRecordLen {
		for _, l := range lines {
			if strings.HasPrefix(l, "21") {
				return FormatCODA
			}
		}
	}
	return FormatCSV
}

const bom = "\ufeff"

func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(content, "\n")
}

// importDir is the workspace subdirectory for files waiting to be imported.
const importDir = "import"

// processedDir is the subdirectory for imported files.
const processedDir = "import/processed"

var importExtensions = map[string]bool{
	".csv": true, ".txt": true, ".sta": true, ".mt940": true, ".940": true, ".cod": true, ".coda": true,
}

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns statement files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !importExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
