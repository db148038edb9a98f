package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/rolegate/auth"
)

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the built-in accounts and their roles",
		Args:  cobra.NoArgs,
		// The registry is static, so no configuration is needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			store := auth.NewStaticUserStore(auth.DefaultUsers()...)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tROLE")
			for _, u := range store.Users() {
				fmt.Fprintf(w, "%s\t%s\n", u.Username, u.Role)
			}
			return w.Flush()
		},
	}
}
