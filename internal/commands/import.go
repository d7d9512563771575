package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ledenadmin/ledenadmin/internal/auditlog"
	"github.com/ledenadmin/ledenadmin/internal/importer"
	"github.com/ledenadmin/ledenadmin/internal/ledger"
	"github.com/ledenadmin/ledenadmin/internal/money"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

type importFlags struct {
	format   string
	encoding string
	mapping  string
}

func (f *importFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.format, "format", "auto", "csv, mt940, coda or auto")
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "file encoding (default from ledenadmin.yaml)")
	cmd.Flags().StringVar(&f.mapping, "mapping", "", "YAML file with the column mapping, for CSV files")
}

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank statements into the ledger",
	}
	cmd.AddCommand(newImportListCommand(), newImportPreviewCommand(), newImportRunCommand())
	return cmd
}

func newImportListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List statement files waiting in import/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			files, err := importer.Scan(ws.root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No files to import")
				return nil
			}
			for _, f := range files {
				fmt.Fprintf(out, "%s\t%d bytes\n", f.Name, f.Size)
			}
			return nil
		},
	}
}

func newImportPreviewCommand() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Parse a statement and show the normalized rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			sess, err := ws.prepareImport(args[0], flags)
			if err != nil {
				return err
			}
			printPreview(cmd.OutOrStdout(), sess)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newImportRunCommand() *cobra.Command {
	var flags importFlags
	var keepFile bool

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Import a statement into the monthly ledger files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			path := ws.resolveImportPath(args[0])
			sess, err := ws.prepareImport(path, flags)
			if err != nil {
				return err
			}
			summary := importer.Summarize(sess.Preview())

			txs, err := sess.Complete()
			if err != nil {
				return err
			}
			cats, err := ws.categories()
			if err != nil {
				return err
			}
			res, err := ledger.NewService(ws.root, cats).Append(ws.ctx, txs, ledger.AppendOptions{SkipDuplicates: true})
			if err != nil {
				return err
			}

			details := fmt.Sprintf("%s: %d rows, %d appended, %d duplicates, %d rejected",
				sess.Format(), summary.Total, res.Appended, res.Duplicates, summary.Rejected)
			if err := ws.record(auditlog.ActionImport, sess.Source, details); err != nil {
				return err
			}

			if !keepFile && ws.inImportDir(path) {
				if err := importer.MarkProcessed(ws.root, filepath.Base(path)); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s): %d appended, %d duplicates skipped, %d rejected\n",
				sess.Source, sess.Format(), res.Appended, res.Duplicates, summary.Rejected)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&keepFile, "keep", false, "leave the file in import/ after importing")
	return cmd
}

// resolveImportPath lets a bare file name refer to a file in import/.
func (w *workspace) resolveImportPath(arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	candidate := filepath.Join(w.root, "import", arg)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return arg
}

func (w *workspace) inImportDir(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == filepath.Join(w.root, "import")
}

// prepareImport reads, decodes, parses and maps a statement file and
// returns the session at the preview step.
func (w *workspace) prepareImport(path string, flags importFlags) (*importer.Session, error) {
	path = w.resolveImportPath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	enc := flags.encoding
	if enc == "" {
		enc = w.cfg.Import.Encoding
	}
	content, err := importer.Decode(data, enc)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	cats, err := w.categories()
	if err != nil {
		return nil, err
	}
	sess, err := importer.NewSession(nil, importer.NormalizeOptions{
		DefaultCategory: w.cfg.Import.DefaultCategory,
		Categories:      cats,
	})
	if err != nil {
		return nil, fmt.Errorf("import settings: %w", err)
	}
	if err := sess.Upload(flags.format, filepath.Base(path), content); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	mapping := sess.SuggestedMapping()
	if flags.mapping != "" {
		if mapping, err = loadMapping(flags.mapping); err != nil {
			return nil, err
		}
	}
	if err := sess.Map(mapping); err != nil {
		return nil, fmt.Errorf("%w (columns: %s)", err, strings.Join(sess.Headers(), ", "))
	}
	return sess, nil
}

func loadMapping(path string) (importer.Mapping, error) {
	var m importer.Mapping
	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("reading mapping: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parsing mapping: %w", err)
	}
	return m, nil
}

func printPreview(w io.Writer, sess *importer.Session) {
	results := sess.Preview()
	sum := importer.Summarize(results)
	fmt.Fprintf(w, "%s (%s): %d rows, %d ok, %d defaulted, %d rejected, %d income, %d expense\n",
		sess.Source, sess.Format(), sum.Total, sum.OK, sum.Defaulted, sum.Rejected, sum.Income, sum.Expense)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION\tSTATUS")
	for _, r := range results {
		date := "-"
		if !r.Tx.Date.IsZero() {
			date = period.FormatDateBE(r.Tx.Date)
		}
		status := string(r.Status)
		if len(r.Reasons) > 0 {
			status += ": " + strings.Join(r.Reasons, "; ")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Line, date, r.Tx.Type, money.FormatCurrencyBE(r.Tx.Amount), r.Tx.Category, r.Tx.Description, status)
	}
	_ = tw.Flush()
}
