package categories

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledenadmin/ledenadmin/internal/model"
)

func TestNewService(t *testing.T) {
	svc := NewService(Defaults())
	assert.Len(t, svc.All(), len(Defaults()))
	assert.True(t, svc.Exists(Placeholder))
}

func TestGetCaseInsensitive(t *testing.T) {
	svc := NewService(Defaults())

	c, ok := svc.Get(" lidgeld ")
	require.True(t, ok)
	assert.Equal(t, "Lidgeld", c.Name)

	_, ok = svc.Get("Casino")
	assert.False(t, ok)
}

func TestAllows(t *testing.T) {
	svc := NewService(Defaults())

	assert.True(t, svc.Allows("Lidgeld", model.Income))
	assert.False(t, svc.Allows("Lidgeld", model.Expense))
	assert.True(t, svc.Allows("Activiteiten", model.Expense))
	assert.True(t, svc.Allows("Activiteiten", model.Income))
	assert.False(t, svc.Allows("Unknown", model.Income))
}

func TestByType(t *testing.T) {
	svc := NewService(Defaults())

	for _, c := range svc.ByType(model.Expense) {
		assert.NotEqual(t, model.Income, c.Type, "%s should not be listed for expenses", c.Name)
	}
	assert.Len(t, svc.ByType(model.Income), 6)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewService(Defaults()).Save(dir))

	_, err := os.Stat(filepath.Join(dir, "categories", "categories.csv"))
	require.NoError(t, err)

	svc, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), svc.All())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestReadCategories_BadType(t *testing.T) {
	_, err := ReadCategories(strings.NewReader("name,type,description\nHuur,LOSS,\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestWriteCategories_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCategories(&buf, []Category{{Name: "Huur", Type: model.Expense}}))
	assert.Equal(t, "name,type,description\nHuur,EXPENSE,\n", buf.String())
}
