package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file.
const FileName = "ledenadmin.yaml"

// Config represents the top-level ledenadmin.yaml configuration.
type Config struct {
	Association AssociationConfig `yaml:"association"`
	Fees        FeesConfig        `yaml:"fees"`
	Import      ImportConfig      `yaml:"import"`
	SEPA        SEPAConfig        `yaml:"sepa"`
	Git         GitConfig         `yaml:"git"`
	Log         LogConfig         `yaml:"log"`
}

// AssociationConfig identifies the association and its creditor account.
type AssociationConfig struct {
	Name       string `yaml:"name"`
	CreditorID string `yaml:"creditor_id"` // SEPA creditor identifier, e.g. BE69ZZZ050D000000008
	IBAN       string `yaml:"iban"`
	BIC        string `yaml:"bic"`
}

// FeesConfig holds defaults for new membership fees.
type FeesConfig struct {
	DefaultTerm   string `yaml:"default_term"`   // MONTHLY or YEARLY
	DefaultAmount string `yaml:"default_amount"` // Belgian notation, e.g. "10,00"
	DefaultMethod string `yaml:"default_method"`
}

// ImportConfig controls bank statement imports.
type ImportConfig struct {
	DefaultCategory string `yaml:"default_category"`
	Encoding        string `yaml:"encoding"` // "auto", "utf-8" or "windows-1252"
}

// SEPAConfig controls direct-debit batch generation.
type SEPAConfig struct {
	SequenceType         string `yaml:"sequence_type"` // FRST, RCUR, OOFF or FNAL
	CollectionOffsetDays int    `yaml:"collection_offset_days"`
}

// GitConfig holds the identity used for workspace commits. Commits are only
// made when the workspace is a git repository.
type GitConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Load reads a ledenadmin.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(name string) *Config {
	return &Config{
		Association: AssociationConfig{
			Name: name,
		},
		Fees: FeesConfig{
			DefaultTerm:   "MONTHLY",
			DefaultAmount: "10,00",
			DefaultMethod: "OVERSCHRIJVING",
		},
		Import: ImportConfig{
			DefaultCategory: "Overige",
			Encoding:        "auto",
		},
		SEPA: SEPAConfig{
			SequenceType:         "RCUR",
			CollectionOffsetDays: 5,
		},
		Git: GitConfig{
			AuthorName:  "ledenadmin",
			AuthorEmail: "ledenadmin@localhost",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyEnv overrides settings from LEDENADMIN_* environment variables.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set("LEDENADMIN_LOG_LEVEL", &c.Log.Level)
	set("LEDENADMIN_CREDITOR_ID", &c.Association.CreditorID)
	set("LEDENADMIN_CREDITOR_IBAN", &c.Association.IBAN)
	set("LEDENADMIN_CREDITOR_BIC", &c.Association.BIC)
	if v, ok := lookup("LEDENADMIN_LOG_PRETTY"); ok {
		c.Log.Pretty = v == "1" || strings.EqualFold(v, "true")
	}
}
