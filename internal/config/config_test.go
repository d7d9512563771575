package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Moskee Al Nour")
	cfg.Association.CreditorID = "BE69ZZZ050D000000008"
	cfg.Association.IBAN = "BE68539007547034"
	cfg.Association.BIC = "GKCCBEBB"

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Association, got.Association)
	assert.Equal(t, cfg.Fees, got.Fees)
	assert.Equal(t, cfg.Import, got.Import)
	assert.Equal(t, cfg.SEPA, got.SEPA)
	assert.Equal(t, cfg.Git, got.Git)
	assert.Equal(t, cfg.Log, got.Log)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Association")

	assert.Equal(t, "My Association", cfg.Association.Name)
	assert.Equal(t, "MONTHLY", cfg.Fees.DefaultTerm)
	assert.Equal(t, "10,00", cfg.Fees.DefaultAmount)
	assert.Equal(t, "OVERSCHRIJVING", cfg.Fees.DefaultMethod)
	assert.Equal(t, "Overige", cfg.Import.DefaultCategory)
	assert.Equal(t, "auto", cfg.Import.Encoding)
	assert.Equal(t, "RCUR", cfg.SEPA.SequenceType)
	assert.Equal(t, 5, cfg.SEPA.CollectionOffsetDays)
	assert.Equal(t, "ledenadmin", cfg.Git.AuthorName)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Test vzw")
	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test vzw")
	assert.Contains(t, contents, "default_term: MONTHLY")
	assert.Contains(t, contents, "default_category: Overige")
	assert.Contains(t, contents, "sequence_type: RCUR")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default("Test vzw")
	env := map[string]string{
		"LEDENADMIN_LOG_LEVEL":     "debug",
		"LEDENADMIN_CREDITOR_ID":   "BE69ZZZ050D000000008",
		"LEDENADMIN_CREDITOR_IBAN": " BE68539007547034 ",
		"LEDENADMIN_LOG_PRETTY":    "true",
		"LEDENADMIN_CREDITOR_BIC":  "",
	}
	cfg.Association.BIC = "GKCCBEBB"
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "BE69ZZZ050D000000008", cfg.Association.CreditorID)
	assert.Equal(t, "BE68539007547034", cfg.Association.IBAN)
	assert.Equal(t, "GKCCBEBB", cfg.Association.BIC, "empty env value must not clear the file value")
	assert.True(t, cfg.Log.Pretty)
}
