package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledenadmin/ledenadmin/internal/auditlog"
	"github.com/ledenadmin/ledenadmin/internal/money"
	"github.com/ledenadmin/ledenadmin/internal/period"
	"github.com/ledenadmin/ledenadmin/internal/sepa"
)

func newSEPACommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sepa",
		Short: "SEPA direct debit",
	}
	cmd.AddCommand(newSEPAExportCommand())
	return cmd
}

func newSEPAExportCommand() *cobra.Command {
	var out, date, sequence string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a pain.008 direct-debit file for all open SEPA fees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}

			collectionDate := period.DateOnly(time.Now()).AddDate(0, 0, ws.cfg.SEPA.CollectionOffsetDays)
			if date != "" {
				if collectionDate, err = parseDate(date); err != nil {
					return err
				}
			}
			if sequence == "" {
				sequence = ws.cfg.SEPA.SequenceType
			}

			collections, missing, err := sepa.Gather(ws.ctx, ws.store)
			if err != nil {
				return err
			}
			creditor := sepa.Creditor{
				Name:       ws.cfg.Association.Name,
				IBAN:       ws.cfg.Association.IBAN,
				BIC:        ws.cfg.Association.BIC,
				CreditorID: ws.cfg.Association.CreditorID,
			}
			batch, err := sepa.Build(ws.ctx, creditor, collections, sepa.Options{
				SequenceType:   sequence,
				CollectionDate: collectionDate,
			})
			if err != nil {
				return err
			}
			batch.Skipped = append(missing, batch.Skipped...)

			if out == "" {
				out = filepath.Join(ws.root, "exports", fmt.Sprintf("sepa-%s.xml", period.ToISO(collectionDate)))
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return fmt.Errorf("creating export dir: %w", err)
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if _, err := batch.WriteTo(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", out, err)
			}

			details := fmt.Sprintf("%d fees, %s, collection %s", batch.Count, batch.Total.StringFixed(2), period.ToISO(collectionDate))
			if err := ws.record(auditlog.ActionSEPAExport, batch.MessageID, details); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Wrote %s: %d fees, total %s\n", out, batch.Count, money.FormatCurrencyBE(batch.Total))
			for _, s := range batch.Skipped {
				fmt.Fprintf(w, "Skipped %s: %s\n", s.FeeID, s.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file (default exports/sepa-<date>.xml)")
	cmd.Flags().StringVar(&date, "date", "", "requested collection date (DD/MM/YYYY)")
	cmd.Flags().StringVar(&sequence, "sequence", "", "FRST, RCUR, OOFF or FNAL (default from ledenadmin.yaml)")
	return cmd
}
