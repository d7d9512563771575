package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Actor:     "penningmeester",
		Action:    ActionFeeCreated,
		Subject:   "2025-03-001",
		Details:   "M001 MONTHLY 10.00 2025-03-01..2025-03-31",
	}
}

func TestAppend_NewAndExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Action = ActionFeePaid
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionFeeCreated, entries[0].Action)
	assert.Equal(t, ActionFeePaid, entries[1].Action)

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	original.Details = `quoted "details", with comma`
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, original.Actor, got.Actor)
	assert.Equal(t, original.Subject, got.Subject)
	assert.Equal(t, original.Details, got.Details)
}

func TestRead_NotFoundAndEmpty(t *testing.T) {
	dir := t.TempDir()
	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "audit-log.csv"), []byte(Header+"\n"), 0o644))
	entries, err = Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.ErrorContains(t, err, "expected 5 fields")

	row := MarshalEntry(testEntry())
	row[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing timestamp")
}

func TestTimestampFormat(t *testing.T) {
	e := testEntry()
	e.Timestamp = time.Date(2025, 3, 15, 11, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "2025-03-15T10:30:00Z", MarshalEntry(e)[colTimestamp])
}

func TestLog_Record(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, "secretaris")
	l.now = func() time.Time { return testTime }

	require.NoError(t, l.Record(ActionMemberAdded, "M001", "Jan Peeters"))
	require.NoError(t, l.Record(ActionFeeCreated, "2025-03-001", "M001"))
	require.NoError(t, l.Record(ActionFeePaid, "2025-03-001", "2025-03-20"))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "secretaris", entries[0].Actor)
	assert.True(t, testTime.Equal(entries[0].Timestamp))

	fee := Filter(entries, "2025-03-001", "")
	assert.Len(t, fee, 2)
	paid := Filter(entries, "2025-03-001", ActionFeePaid)
	require.Len(t, paid, 1)
	assert.Equal(t, "2025-03-20", paid[0].Details)
}
