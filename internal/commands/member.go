package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledenadmin/ledenadmin/internal/auditlog"
	"github.com/ledenadmin/ledenadmin/internal/fees"
	"github.com/ledenadmin/ledenadmin/internal/money"
	"github.com/ledenadmin/ledenadmin/internal/period"
)

func newMemberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Manage members",
	}
	cmd.AddCommand(newMemberAddCommand(), newMemberListCommand())
	return cmd
}

func newMemberAddCommand() *cobra.Command {
	var req fees.AddMemberRequest
	var mandateSigned, joinedOn string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			if req.MandateSigned, err = parseOptionalDate(mandateSigned); err != nil {
				return err
			}
			if req.JoinedOn, err = parseOptionalDate(joinedOn); err != nil {
				return err
			}

			m, err := ws.fees.AddMember(ws.ctx, req)
			if err != nil {
				return err
			}
			if err := ws.record(auditlog.ActionMemberAdded, m.ID, m.FullName()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added member %s (%s)\n", m.ID, m.FullName())
			return nil
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last", "", "last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&req.IBAN, "iban", "", "bank account for direct debit")
	cmd.Flags().StringVar(&req.MandateID, "mandate", "", "SEPA mandate reference")
	cmd.Flags().StringVar(&mandateSigned, "mandate-signed", "", "mandate signature date (DD/MM/YYYY)")
	cmd.Flags().StringVar(&joinedOn, "joined", "", "membership start date (DD/MM/YYYY), defaults to today")

	return cmd
}

func newMemberListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			members, err := ws.fees.Members(ws.ctx)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tIBAN\tMANDATE\tJOINED\tACTIVE")
			for _, m := range members {
				mandate := "-"
				if m.HasMandate() {
					mandate = m.MandateID
				}
				iban := "-"
				if m.IBAN != "" {
					iban = money.IBANInputMask(m.IBAN)
				}
				joined := "-"
				if !m.JoinedOn.IsZero() {
					joined = period.FormatDateBE(m.JoinedOn)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n", m.ID, m.FullName(), m.Email, iban, mandate, joined, m.Active)
			}
			return tw.Flush()
		},
	}
}
