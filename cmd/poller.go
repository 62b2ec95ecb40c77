package cmd

import (
	"github.com/spf13/cobra"
)

func newPollerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "poller",
		Short: "Rate unprocessed Airtable records until interrupted",
		Long: `poller is the fallback for records the Airtable automation missed. It
lists up to 25 unprocessed records with a photo, posts each one to API_URL
and sleeps 30s when there is nothing to do.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.container.RequireAirtable(); err != nil {
				return err
			}
			return a.container.ServicePoller.Run(cmd.Context())
		},
	}
}
