package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newMatrixCommand() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Show the monthly payment status of every active member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			if year == 0 {
				year = time.Now().Year()
			}
			m, err := ws.fees.Matrix(ws.ctx, year)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', 0)
			fmt.Fprintf(tw, "%d\tID", m.Year)
			for mo := time.January; mo <= time.December; mo++ {
				fmt.Fprintf(tw, "\t%s", mo.String()[:3])
			}
			fmt.Fprintln(tw)
			for _, r := range m.Rows {
				fmt.Fprintf(tw, "%s\t%s", r.Member.FullName(), r.Member.ID)
				for _, c := range r.Months {
					fmt.Fprintf(tw, "\t%s", c)
				}
				fmt.Fprintln(tw)
			}
			fmt.Fprintf(tw, "paid\t")
			for mo := time.January; mo <= time.December; mo++ {
				fmt.Fprintf(tw, "\t%d", m.Paid(mo))
			}
			fmt.Fprintln(tw)
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default current year)")
	return cmd
}
