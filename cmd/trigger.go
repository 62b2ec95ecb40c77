package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTriggerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <recordId>",
		Short: "Run the record-created automation once and print its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.container.RequireAirtable(); err != nil {
				return err
			}
			output, err := a.container.ServiceTrigger.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}
}
