package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledenadmin/ledenadmin/internal/auditlog"
	"github.com/ledenadmin/ledenadmin/internal/commands"
	"github.com/ledenadmin/ledenadmin/internal/config"
	"github.com/ledenadmin/ledenadmin/internal/fees"
	"github.com/ledenadmin/ledenadmin/internal/gitops"
)

func runLedenadmin(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func initWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runLedenadmin(t, "init", dir, "--name", "Moskee De Vrede vzw")
	require.NoError(t, err)
	return dir
}

func addMemberWithMandate(t *testing.T, dir string) {
	t.Helper()
	out, err := runLedenadmin(t, "member", "add", "--dir", dir,
		"--first", "Jan", "--last", "Peeters", "--email", "jan@example.be",
		"--iban", "BE68 5390 0754 7034", "--mandate", "MND-001", "--mandate-signed", "01/09/2024",
		"--joined", "01/09/2024")
	require.NoError(t, err)
	require.Contains(t, out, "Added member M001 (Jan Peeters)")
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initWorkspace(t)

	for _, d := range []string{"members", "fees", "categories", "logs", "exports", "import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	for _, f := range []string{"members/members.csv", "fees/fees.csv", "categories/categories.csv", ".gitignore"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "file %s should exist", f)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Moskee De Vrede vzw", cfg.Association.Name)
	assert.Equal(t, "MONTHLY", cfg.Fees.DefaultTerm)
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runLedenadmin(t, "init", t.TempDir())
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExistingWorkspace(t *testing.T) {
	dir := initWorkspace(t)
	_, err := runLedenadmin(t, "init", dir, "--name", "Again")
	assert.ErrorContains(t, err, "already exists")
}

func TestInit_Git(t *testing.T) {
	if !gitops.Available() {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	out, err := runLedenadmin(t, "init", dir, "--name", "Test vzw", "--git")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized ledenadmin workspace at")
	assert.True(t, gitops.IsRepo(dir))

	msg, err := gitops.LastMessage(dir)
	require.NoError(t, err)
	assert.Equal(t, "init: Initialize Test vzw", msg)

	addMemberWithMandate(t, dir)
	msg, err = gitops.LastMessage(dir)
	require.NoError(t, err)
	assert.Equal(t, "member_added: M001", msg)
}

func TestCommands_RequireWorkspace(t *testing.T) {
	_, err := runLedenadmin(t, "member", "list", "--dir", t.TempDir())
	assert.ErrorContains(t, err, "ledenadmin init")
}

func TestMemberAddAndList(t *testing.T) {
	dir := initWorkspace(t)
	addMemberWithMandate(t, dir)

	_, err := runLedenadmin(t, "member", "add", "--dir", dir, "--first", "Els", "--iban", "BE00 1234")
	assert.ErrorIs(t, err, fees.ErrInvalidRequest)

	out, err := runLedenadmin(t, "member", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "M001")
	assert.Contains(t, out, "BE68 5390 0754 7034")
	assert.Contains(t, out, "MND-001")
	assert.Contains(t, out, "01/09/2024")
}

func TestFeeEndDate(t *testing.T) {
	tests := []struct {
		start, term, want string
	}{
		{"15/02/2024", "MONTHLY", "29/02/2024"},
		{"2025-01-31", "monthly", "31/01/2025"},
		{"01/03/2025", "YEARLY", "28/02/2026"},
		{"29/02/2024", "YEARLY", "28/02/2025"},
	}
	for _, tt := range tests {
		out, err := runLedenadmin(t, "fee", "end-date", "--start", tt.start, "--term", tt.term)
		require.NoError(t, err)
		assert.Equal(t, tt.want+"\n", out, "start %s term %s", tt.start, tt.term)
	}

	_, err := runLedenadmin(t, "fee", "end-date", "--start", "31/02/2025")
	assert.ErrorContains(t, err, "invalid date")
}

func TestFeeAmountNotation(t *testing.T) {
	dir := initWorkspace(t)
	addMemberWithMandate(t, dir)

	for _, bad := range []string{"25.50", "25.5", "1.25,00", "1,234.5"} {
		_, err := runLedenadmin(t, "fee", "add", "M001", "--dir", dir, "--start", "01/02/2025", "--amount", bad, "--dry-run")
		assert.ErrorContains(t, err, "use a comma for decimals", bad)
	}

	out, err := runLedenadmin(t, "fee", "add", "M001", "--dir", dir, "--start", "01/02/2025", "--amount", "1.250,00")
	require.NoError(t, err)
	assert.Contains(t, out, "Created fee 2025-02-001: 2025-02-01..2025-02-28, € 1.250,00")

	_, err = runLedenadmin(t, "fee", "update", "2025-02-001", "--dir", dir, "--amount", "12.50")
	assert.ErrorContains(t, err, `invalid amount "12.50"`)

	out, err = runLedenadmin(t, "fee", "update", "2025-02-001", "--dir", dir, "--amount", "12,50")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated fee 2025-02-001")
}

func TestFeeLifecycle(t *testing.T) {
	dir := initWorkspace(t)
	addMemberWithMandate(t, dir)

	out, err := runLedenadmin(t, "fee", "add", "M001", "--dir", dir, "--start", "01/02/2025", "--method", "SEPA")
	require.NoError(t, err)
	assert.Contains(t, out, "Created fee 2025-02-001: 2025-02-01..2025-02-28, € 10,00, reference +++020/2502/00148+++")

	out, err = runLedenadmin(t, "fee", "add", "M001", "--dir", dir, "--start", "15/02/2025", "--amount", "12,50")
	require.Error(t, err)
	assert.ErrorIs(t, err, fees.ErrOverlap)
	assert.Contains(t, out, "Overlaps 1 existing fee(s)")
	assert.Contains(t, out, "2025-02-001")

	out, err = runLedenadmin(t, "fee", "add", "M001", "--dir", dir, "--start", "15/02/2025", "--amount", "12,50", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-02-15..2025-02-28, € 12,50")

	out, err = runLedenadmin(t, "fee", "add", "M001", "--dir", dir, "--start", "15/02/2025", "--amount", "12,50", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Created fee 2025-02-002")

	out, err = runLedenadmin(t, "fee", "update", "2025-02-002", "--dir", dir, "--start", "01/03/2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated fee 2025-02-002: 2025-03-01..2025-03-31")

	out, err = runLedenadmin(t, "fee", "check", "M001", "--dir", dir, "--start", "01/04/2025")
	require.NoError(t, err)
	assert.Contains(t, out, "No overlap for 2025-04-01..2025-04-30")

	out, err = runLedenadmin(t, "fee", "check", "M001", "--dir", dir, "--start", "28/02/2025", "--end", "01/03/2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Overlaps 2 existing fee(s)")

	out, err = runLedenadmin(t, "fee", "pay", "2025-02-001", "--dir", dir, "--on", "03/02/2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Fee 2025-02-001 paid on 03/02/2025")

	_, err = runLedenadmin(t, "fee", "pay", "2025-02-001", "--dir", dir)
	assert.ErrorIs(t, err, fees.ErrInvalidState)

	out, err = runLedenadmin(t, "fee", "cancel", "2025-02-002", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Fee 2025-02-002 cancelled")

	out, err = runLedenadmin(t, "fee", "list", "M001", "--dir", dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "2025-02-001")
	assert.Contains(t, lines[1], "PAID")
	assert.Contains(t, lines[2], "2025-02-002")
	assert.Contains(t, lines[2], "CANCELLED")

	_, err = runLedenadmin(t, "fee", "list", "M404", "--dir", dir)
	assert.ErrorIs(t, err, fees.ErrNotFound)

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	var actions []string
	for _, e := range entries {
		actions = append(actions, e.Action)
		assert.Equal(t, "admin", e.Actor)
	}
	assert.Equal(t, []string{
		auditlog.ActionMemberAdded,
		auditlog.ActionFeeCreated,
		auditlog.ActionFeeCreated,
		auditlog.ActionFeeUpdated,
		auditlog.ActionFeePaid,
		auditlog.ActionFeeCancelled,
	}, actions)
}

func TestMatrix(t *testing.T) {
	dir := initWorkspace(t)
	addMemberWithMandate(t, dir)

	_, err := runLedenadmin(t, "fee", "add", "M001", "--dir", dir, "--start", "01/01/2025", "--term", "YEARLY")
	require.NoError(t, err)
	_, err = runLedenadmin(t, "fee", "pay", "2025-01-001", "--dir", dir, "--on", "05/01/2025")
	require.NoError(t, err)

	out, err := runLedenadmin(t, "matrix", "--dir", dir, "--year", "2025")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Jan")
	assert.Contains(t, lines[0], "Dec")
	assert.Equal(t, 12, strings.Count(lines[1], "PAID"))
	assert.True(t, strings.HasPrefix(lines[2], "paid"))
}

func TestImportPreviewAndRun(t *testing.T) {
	dir := initWorkspace(t)
	data, err := os.ReadFile(filepath.Join("..", "importer", "testdata", "kbc_export.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "kbc.csv"), data, 0o644))

	out, err := runLedenadmin(t, "import", "list", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "kbc.csv")

	out, err = runLedenadmin(t, "import", "preview", "kbc.csv", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "kbc.csv (csv): 4 rows, 2 ok, 1 defaulted, 1 rejected, 3 income, 1 expense")
	assert.Contains(t, out, "€ 1.250,00")

	out, err = runLedenadmin(t, "import", "run", "kbc.csv", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "3 appended, 0 duplicates skipped, 1 rejected")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "kbc.csv"))
	require.NoError(t, err, "imported file should be moved to processed")
	ledgerData, err := os.ReadFile(filepath.Join(dir, "2025", "03", "transactions.csv"))
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(strings.TrimSpace(string(ledgerData)), "\n")+1)

	out, err = runLedenadmin(t, "import", "run", filepath.Join(dir, "import", "processed", "kbc.csv"), "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "0 appended, 3 duplicates skipped")

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	imports := auditlog.Filter(entries, "kbc.csv", auditlog.ActionImport)
	require.Len(t, imports, 2)
	assert.Contains(t, imports[0].Details, "3 appended")
}

func TestImportRun_MappingFile(t *testing.T) {
	dir := initWorkspace(t)
	csv := "When,How much,What\n02/03/2025,\"12,00\",Gift\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "odd.csv"), []byte(csv), 0o644))

	_, err := runLedenadmin(t, "import", "preview", "odd.csv", "--dir", dir)
	assert.ErrorContains(t, err, "mapping incomplete")

	mapping := filepath.Join(dir, "mapping.yaml")
	require.NoError(t, os.WriteFile(mapping, []byte("date: When\namount: How much\ndescription: What\n"), 0o644))

	out, err := runLedenadmin(t, "import", "run", "odd.csv", "--dir", dir, "--mapping", mapping, "--keep")
	require.NoError(t, err)
	assert.Contains(t, out, "1 appended")
	_, err = os.Stat(filepath.Join(dir, "import", "odd.csv"))
	assert.NoError(t, err, "--keep should leave the file in place")
}

func TestImportRun_CategoryOfWrongType(t *testing.T) {
	dir := initWorkspace(t)
	csv := "datum;bedrag;omschrijving;categorie\n01/03/2025;25,50;Lidgeld;Huur\n02/03/2025;10,00;Gift;Donatie\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "mixed.csv"), []byte(csv), 0o644))

	out, err := runLedenadmin(t, "import", "preview", "mixed.csv", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 rows, 1 ok, 1 defaulted, 0 rejected")
	assert.Contains(t, out, `category "Huur" not allowed for INCOME, using Overige`)

	out, err = runLedenadmin(t, "import", "run", "mixed.csv", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "2 appended")

	ledgerData, err := os.ReadFile(filepath.Join(dir, "2025", "03", "transactions.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(ledgerData), "Overige")
	assert.NotContains(t, string(ledgerData), "Huur")
}

func TestImport_DefaultCategoryMustFitBothTypes(t *testing.T) {
	dir := initWorkspace(t)
	cfgPath := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Import.DefaultCategory = "Lidgeld"
	require.NoError(t, config.Save(cfgPath, cfg))

	csv := "date,amount,description\n01/03/2025,25.50,Lidgeld\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "a.csv"), []byte(csv), 0o644))

	_, err = runLedenadmin(t, "import", "preview", "a.csv", "--dir", dir)
	assert.ErrorContains(t, err, `default category "Lidgeld" cannot be used for EXPENSE`)
}

func TestSEPAExport(t *testing.T) {
	dir := initWorkspace(t)
	cfgPath := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Association.IBAN = "BE62510007547061"
	cfg.Association.CreditorID = "BE69ZZZ0123456789"
	require.NoError(t, config.Save(cfgPath, cfg))

	os.Unsetenv("LEDENADMIN_CREDITOR_BIC")
	t.Cleanup(func() { os.Unsetenv("LEDENADMIN_CREDITOR_BIC") })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDENADMIN_CREDITOR_BIC=GKCCBEBB\n"), 0o600))

	addMemberWithMandate(t, dir)
	_, err = runLedenadmin(t, "member", "add", "--dir", dir, "--first", "Els", "--last", "Maes")
	require.NoError(t, err)
	_, err = runLedenadmin(t, "fee", "add", "M001", "--dir", dir, "--start", "01/02/2025", "--method", "SEPA")
	require.NoError(t, err)
	_, err = runLedenadmin(t, "fee", "add", "M002", "--dir", dir, "--start", "01/02/2025", "--method", "CASH")
	require.NoError(t, err)

	target := filepath.Join(dir, "exports", "batch.xml")
	out, err := runLedenadmin(t, "sepa", "export", "--dir", dir, "--date", "10/02/2025", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "1 fees, total € 10,00")

	xmlData, err := os.ReadFile(target)
	require.NoError(t, err)
	doc := string(xmlData)
	assert.Contains(t, doc, "<EndToEndId>2025-02-001</EndToEndId>")
	assert.Contains(t, doc, "<ReqdColltnDt>2025-02-10</ReqdColltnDt>")
	assert.Contains(t, doc, "<BIC>GKCCBEBB</BIC>")
	assert.Contains(t, doc, "<Nm>Moskee De Vrede vzw</Nm>")
	assert.NotContains(t, doc, "2025-02-002")

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, auditlog.ActionSEPAExport, last.Action)
	assert.Contains(t, last.Details, "1 fees, 10.00, collection 2025-02-10")
}

func TestSEPAExport_RequiresCreditor(t *testing.T) {
	dir := initWorkspace(t)
	_, err := runLedenadmin(t, "sepa", "export", "--dir", dir, "--date", "10/02/2025")
	assert.ErrorContains(t, err, "creditor")
}

func TestAmountAndIBAN(t *testing.T) {
	out, err := runLedenadmin(t, "amount", "parse", "1.234,567")
	require.NoError(t, err)
	assert.Equal(t, "masked: 1234,56\nvalue: 1234.56\nformatted: € 1.234,56\n", out)

	out, err = runLedenadmin(t, "amount", "format", "1234.5")
	require.NoError(t, err)
	assert.Equal(t, "€ 1.234,50\n", out)

	_, err = runLedenadmin(t, "amount", "format", "twaalf")
	assert.Error(t, err)

	out, err = runLedenadmin(t, "iban", "check", "be68539007547034")
	require.NoError(t, err)
	assert.Equal(t, "BE68 5390 0754 7034 is valid\n", out)

	_, err = runLedenadmin(t, "iban", "check", "BE69539007547034")
	assert.ErrorContains(t, err, "not a valid IBAN")
}
