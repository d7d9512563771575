package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledenadmin/ledenadmin/internal/auditlog"
	"github.com/ledenadmin/ledenadmin/internal/fees"
	"github.com/ledenadmin/ledenadmin/internal/model"
	"github.com/ledenadmin/ledenadmin/internal/money"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

func newFeeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Manage membership fees",
	}
	cmd.AddCommand(
		newFeeEndDateCommand(),
		newFeeAddCommand(),
		newFeeUpdateCommand(),
		newFeePayCommand(),
		newFeeCancelCommand(),
		newFeeListCommand(),
		newFeeCheckCommand(),
	)
	return cmd
}

func newFeeEndDateCommand() *cobra.Command {
	var start, term string

	cmd := &cobra.Command{
		Use:   "end-date",
		Short: "Print the last day covered by a fee starting on --start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseDate(start)
			if err != nil {
				return err
			}
			t, err := period.ParseTerm(term)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), period.FormatDateBE(period.CalculateEndDate(s, t)))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start date (DD/MM/YYYY)")
	_ = cmd.MarkFlagRequired("start")
	cmd.Flags().StringVar(&term, "term", string(period.Monthly), "MONTHLY or YEARLY")

	return cmd
}

func newFeeAddCommand() *cobra.Command {
	var amount, term, start, end, method, notes string
	var force, dryRun bool

	cmd := &cobra.Command{
		Use:   "add <member-id>",
		Short: "Create a fee for a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("amount") {
				amount = ws.cfg.Fees.DefaultAmount
			}
			if !cmd.Flags().Changed("term") {
				term = ws.cfg.Fees.DefaultTerm
			}
			if !cmd.Flags().Changed("method") {
				method = ws.cfg.Fees.DefaultMethod
			}

			a, err := parseAmount(amount)
			if err != nil {
				return err
			}
			req := fees.CreateFeeRequest{
				MemberID: args[0],
				Amount:   a,
				Term:     period.Term(term),
				Method:   model.PaymentMethod(method),
				Notes:    notes,
				Force:    force,
			}
			if t, err := period.ParseTerm(term); err == nil {
				req.Term = t
			}
			if m, err := model.ParsePaymentMethod(method); err == nil {
				req.Method = m
			}
			if req.Start, err = parseDate(start); err != nil {
				return err
			}
			if req.End, err = parseOptionalDate(end); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				draft, err := ws.fees.Draft(ws.ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Fee for %s: %s, %s\n", draft.Fee.MemberID, draft.Fee.Period(), money.FormatCurrencyBE(draft.Fee.Amount))
				printConflicts(out, draft.Conflicts)
				return nil
			}

			fee, err := ws.fees.Create(ws.ctx, req)
			var overlap *fees.OverlapError
			if errors.As(err, &overlap) {
				printConflicts(out, overlap.Conflicts)
				return fmt.Errorf("%w (use --force to create it anyway)", err)
			}
			if err != nil {
				return err
			}
			if err := ws.record(auditlog.ActionFeeCreated, fee.ID, feeDetails(fee)); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created fee %s: %s, %s, reference %s\n", fee.ID, fee.Period(), money.FormatCurrencyBE(fee.Amount), fee.Reference)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount in euro with a decimal comma, e.g. 10,00 or 1.250,00 (default from ledenadmin.yaml)")
	cmd.Flags().StringVar(&term, "term", "", "MONTHLY or YEARLY (default from ledenadmin.yaml)")
	cmd.Flags().StringVar(&start, "start", "", "first covered day (DD/MM/YYYY)")
	_ = cmd.MarkFlagRequired("start")
	cmd.Flags().StringVar(&end, "end", "", "last covered day, overrides the derived end date")
	cmd.Flags().StringVar(&method, "method", "", "SEPA, OVERSCHRIJVING, BANCONTACT or CASH (default from ledenadmin.yaml)")
	cmd.Flags().StringVar(&notes, "notes", "", "free text")
	cmd.Flags().BoolVar(&force, "force", false, "create the fee even when it overlaps an existing one")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the fee and its conflicts without saving")

	return cmd
}

func newFeeUpdateCommand() *cobra.Command {
	var amount, term, start, end, method, notes string
	var force bool

	cmd := &cobra.Command{
		Use:   "update <fee-id>",
		Short: "Change an open fee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}

			req := fees.UpdateFeeRequest{ID: args[0], Force: force}
			flags := cmd.Flags()
			if flags.Changed("amount") {
				a, err := parseAmount(amount)
				if err != nil {
					return err
				}
				req.Amount = &a
			}
			if flags.Changed("term") {
				t, err := period.ParseTerm(term)
				if err != nil {
					return err
				}
				req.Term = &t
			}
			if flags.Changed("start") {
				s, err := parseDate(start)
				if err != nil {
					return err
				}
				req.Start = &s
			}
			if flags.Changed("end") {
				e, err := parseDate(end)
				if err != nil {
					return err
				}
				req.End = &e
			}
			if flags.Changed("method") {
				m, err := model.ParsePaymentMethod(method)
				if err != nil {
					return err
				}
				req.Method = &m
			}
			if flags.Changed("notes") {
				req.Notes = &notes
			}

			fee, err := ws.fees.Update(ws.ctx, req)
			var overlap *fees.OverlapError
			if errors.As(err, &overlap) {
				printConflicts(cmd.OutOrStdout(), overlap.Conflicts)
				return fmt.Errorf("%w (use --force to save it anyway)", err)
			}
			if err != nil {
				return err
			}
			if err := ws.record(auditlog.ActionFeeUpdated, fee.ID, feeDetails(fee)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated fee %s: %s, %s\n", fee.ID, fee.Period(), money.FormatCurrencyBE(fee.Amount))
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount in euro with a decimal comma, e.g. 10,00 or 1.250,00")
	cmd.Flags().StringVar(&term, "term", "", "MONTHLY or YEARLY")
	cmd.Flags().StringVar(&start, "start", "", "first covered day (DD/MM/YYYY)")
	cmd.Flags().StringVar(&end, "end", "", "last covered day")
	cmd.Flags().StringVar(&method, "method", "", "payment method")
	cmd.Flags().StringVar(&notes, "notes", "", "free text")
	cmd.Flags().BoolVar(&force, "force", false, "save even when the new period overlaps another fee")

	return cmd
}

func newFeePayCommand() *cobra.Command {
	var on string

	cmd := &cobra.Command{
		Use:   "pay <fee-id>",
		Short: "Mark a fee as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			paidOn, err := parseOptionalDate(on)
			if err != nil {
				return err
			}
			fee, err := ws.fees.MarkPaid(ws.ctx, args[0], paidOn)
			if err != nil {
				return err
			}
			if err := ws.record(auditlog.ActionFeePaid, fee.ID, "paid on "+period.ToISO(fee.PaidOn)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fee %s paid on %s\n", fee.ID, period.FormatDateBE(fee.PaidOn))
			return nil
		},
	}

	cmd.Flags().StringVar(&on, "on", "", "payment date (DD/MM/YYYY), defaults to today")
	return cmd
}

func newFeeCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <fee-id>",
		Short: "Cancel an open fee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			fee, err := ws.fees.Cancel(ws.ctx, args[0])
			if err != nil {
				return err
			}
			if err := ws.record(auditlog.ActionFeeCancelled, fee.ID, feeDetails(fee)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fee %s cancelled\n", fee.ID)
			return nil
		},
	}
}

func newFeeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <member-id>",
		Short: "List a member's fees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			if _, err := ws.fees.Member(ws.ctx, args[0]); err != nil {
				return err
			}
			list, err := ws.fees.ListByMember(ws.ctx, args[0])
			if err != nil {
				return err
			}
			printFees(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func newFeeCheckCommand() *cobra.Command {
	var start, end, term string

	cmd := &cobra.Command{
		Use:   "check <member-id>",
		Short: "Report fees of a member that overlap a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			s, err := parseDate(start)
			if err != nil {
				return err
			}
			e := s
			if end != "" {
				if e, err = parseDate(end); err != nil {
					return err
				}
			} else {
				t, err := period.ParseTerm(term)
				if err != nil {
					return err
				}
				e = period.CalculateEndDate(s, t)
			}

			conflicts, err := ws.fees.Check(ws.ctx, args[0], s, e)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(conflicts) == 0 {
				fmt.Fprintf(out, "No overlap for %s\n", period.Period{Start: s, End: e})
				return nil
			}
			printConflicts(out, conflicts)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "first day (DD/MM/YYYY)")
	_ = cmd.MarkFlagRequired("start")
	cmd.Flags().StringVar(&end, "end", "", "last day (DD/MM/YYYY), derived from --term when empty")
	cmd.Flags().StringVar(&term, "term", string(period.Monthly), "MONTHLY or YEARLY")

	return cmd
}

func feeDetails(f model.Fee) string {
	return fmt.Sprintf("%s %s %s %s", f.MemberID, f.Period(), f.Amount.StringFixed(2), f.Method)
}

func printConflicts(w io.Writer, conflicts []model.Fee) {
	if len(conflicts) == 0 {
		return
	}
	fmt.Fprintf(w, "Overlaps %d existing fee(s):\n", len(conflicts))
	printFees(w, conflicts)
}

func printFees(w io.Writer, list []model.Fee) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPERIOD\tAMOUNT\tMETHOD\tSTATUS\tREFERENCE")
	for _, f := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.Period(), money.FormatCurrencyBE(f.Amount), f.Method, f.Status, f.Reference)
	}
	_ = tw.Flush()
}
