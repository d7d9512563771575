package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{FormatCSV, FormatMT940, FormatCODA}, r.Names())
	assert.NotNil(t, r.Get("MT940"))
	assert.NotNil(t, r.Get(" coda "))
	assert.Nil(t, r.Get("ofx"))

	assert.Panics(t, func() { r.Register(CSVFormat{}) })
}

func TestDetect(t *testing.T) {
	mt940, err := os.ReadFile("testdata/statement.sta")
	require.NoError(t, err)
	assert.Equal(t, FormatMT940, Detect(string(mt940)))

	assert.Equal(t, FormatMT940, Detect(":20:REF\n:25:BE68539007547034\n"))
	assert.Equal(t, FormatCODA, Detect(sampleCODA()))
	assert.Equal(t, FormatCSV, Detect("date,amount,description\n01/03/2025,25.50,Lidgeld\n"))
	assert.Equal(t, FormatCSV, Detect(""))

	// A CSV whose first cell happens to start with zeros is still CSV.
	assert.Equal(t, FormatCSV, Detect("0000;Datum\n0001;01/03/2025\n"))
}

func TestDecode(t *testing.T) {
	cp1252 := []byte{'C', 'a', 'f', 0xE9}

	got, err := Decode(cp1252, "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "Café", got)

	got, err = Decode(cp1252, "auto")
	require.NoError(t, err)
	assert.Equal(t, "Café", got)

	got, err = Decode([]byte{0xE9, 't', 0xE9}, "latin1")
	require.NoError(t, err)
	assert.Equal(t, "été", got)

	got, err = Decode([]byte("\ufeffDatum;Bedrag"), "")
	require.NoError(t, err)
	assert.Equal(t, "Datum;Bedrag", got)

	_, err = Decode(cp1252, "utf-8")
	assert.Error(t, err)

	_, err = Decode([]byte("x"), "ebcdic")
	assert.ErrorContains(t, err, "unsupported encoding")
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "import")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "processed"), 0o755))
	for _, name := range []string{"maart.csv", "kbc.STA", "belfius.cod", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := Scan(root)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
		assert.Equal(t, int64(1), f.Size)
	}
	assert.ElementsMatch(t, []string{"maart.csv", "kbc.STA", "belfius.cod"}, names)
}

func TestScan_NoImportDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMarkProcessed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "import"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "import", "maart.csv"), []byte("x"), 0o644))

	require.NoError(t, MarkProcessed(root, "maart.csv"))

	assert.NoFileExists(t, filepath.Join(root, "import", "maart.csv"))
	assert.FileExists(t, filepath.Join(root, "import", "processed", "maart.csv"))

	assert.Error(t, MarkProcessed(root, "missing.csv"))
}
