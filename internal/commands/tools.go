package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ledenadmin/ledenadmin/internal/money"
)

func newAmountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amount",
		Short: "Parse and format euro amounts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "parse <input>",
			Short: "Mask and parse typed input such as 1.234,567",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				masked := money.EuroInputMask(args[0])
				amount := money.ParseEuroInput(masked)
				fmt.Fprintf(cmd.OutOrStdout(), "masked: %s\nvalue: %s\nformatted: %s\n",
					masked, amount.StringFixed(2), money.FormatCurrencyBE(amount))
				return nil
			},
		},
		&cobra.Command{
			Use:   "format <decimal>",
			Short: "Format a decimal such as 1234.5 as Belgian currency",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := decimal.NewFromString(args[0])
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), money.FormatCurrencyBE(amount))
				return nil
			},
		},
	)
	return cmd
}

func newIBANCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iban",
		Short: "IBAN helpers",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <iban>",
		Short: "Validate an IBAN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			masked := money.IBANInputMask(args[0])
			if !money.ValidIBAN(args[0]) {
				return fmt.Errorf("%s is not a valid IBAN", masked)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", masked)
			return nil
		},
	})
	return cmd
}
