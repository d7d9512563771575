package importer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ledenadmin/ledenadmin/internal/model"
)

// Step is a stage of an import session.
type Step string

const (
	StepUpload   Step = "UPLOAD"
	StepMapping  Step = "MAPPING"
	StepPreview  Step = "PREVIEW"
	StepComplete Step = "COMPLETE"
)

// ErrInvalidTransition is returned when a session action does not apply to its current step.
var ErrInvalidTransition = errors.New("invalid import step transition")

// Session walks one file through upload, column mapping, preview, and completion.
type Session struct {
	ID     string
	Step   Step
	Source string

	registry *Registry
	opts     NormalizeOptions
	format   Format
	parsed   ParseResult
	mapping  Mapping
	results  []RowResult
}

// NewSession starts a session at the upload step. opts.Method is filled
// from the uploaded format. It fails when the default category cannot be
// used for both income and expense rows.
func NewSession(registry *Registry, opts NormalizeOptions) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Session{ID: uuid.NewString(), Step: StepUpload, registry: registry, opts: opts}, nil
}

// Upload parses content with the named format, or detects it when format is
// "auto" or empty. On a parse failure the session stays at the upload step
// and the parser's message is returned as the error.
func (s *Session) Upload(format, source, content string) error {
	if s.Step != StepUpload {
		return fmt.Errorf("%w: upload from %s", ErrInvalidTransition, s.Step)
	}
	if format == "" || format == "auto" {
		format = Detect(content)
	}
	f := s.registry.Get(format)
	if f == nil {
		return fmt.Errorf("unknown import format %q", format)
	}
	res := f.Parse(content)
	if !res.Success {
		return errors.New(res.Error)
	}
	s.format = f
	s.parsed = res
	s.Source = source
	s.mapping = SuggestMapping(res.Headers)
	s.Step = StepMapping
	return nil
}

// Format returns the name of the uploaded file's format.
func (s *Session) Format() string {
	if s.format == nil {
		return ""
	}
	return s.format.Name()
}

// Headers returns the parsed column headers.
func (s *Session) Headers() []string { return s.parsed.Headers }

// SuggestedMapping returns the mapping proposed for the uploaded headers.
func (s *Session) SuggestedMapping() Mapping { return s.mapping }

// Map applies a column mapping, normalizes every row, and moves to preview.
func (s *Session) Map(m Mapping) error {
	if s.Step != StepMapping {
		return fmt.Errorf("%w: map from %s", ErrInvalidTransition, s.Step)
	}
	if err := m.Validate(s.parsed.Headers); err != nil {
		return err
	}
	opts := s.opts
	opts.Method = s.format.DefaultMethod()
	opts.Source = s.Source
	s.mapping = m
	s.results = Normalize(s.parsed.Rows, m, opts)
	s.Step = StepPreview
	return nil
}

// Preview returns the normalized rows.
func (s *Session) Preview() []RowResult { return s.results }

// Back returns to the previous step. Upload and complete have no previous step.
func (s *Session) Back() error {
	switch s.Step {
	case StepMapping:
		s.Step = StepUpload
		s.format = nil
		s.parsed = ParseResult{}
	case StepPreview:
		s.Step = StepMapping
		s.results = nil
	default:
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, s.Step)
	}
	return nil
}

// Complete finishes the session and returns the committable transactions.
// Rejected rows and rows with a zero amount are left out.
func (s *Session) Complete() ([]model.Transaction, error) {
	if s.Step != StepPreview {
		return nil, fmt.Errorf("%w: complete from %s", ErrInvalidTransition, s.Step)
	}
	var txs []model.Transaction
	for _, r := range s.results {
		if r.Committable() {
			txs = append(txs, r.Tx)
		}
	}
	s.Step = StepComplete
	return txs, nil
}

// Summary counts normalized rows by status.
type Summary struct {
	Total     int
	OK        int
	Defaulted int
	Rejected  int
	Income    int
	Expense   int
}

// Summarize counts results by status and direction.
func Summarize(results []RowResult) Summary {
	var sum Summary
	for _, r := range results {
		sum.Total++
		switch r.Status {
		case RowOK:
			sum.OK++
		case RowDefaulted:
			sum.Defaulted++
		case RowRejected:
			sum.Rejected++
		}
		if r.Tx.Type == model.Expense {
			sum.Expense++
		} else {
			sum.Income++
		}
	}
	return sum
}
