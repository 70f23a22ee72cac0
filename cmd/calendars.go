package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/calsweep/internal/calendar"
)

func newCalendarsCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "List the calendars accessible to an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := calendar.NewClientForAccount(cmd.Context(), account)
			if err != nil {
				return fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
			}

			calendars, err := client.ListCalendars(cmd.Context())
			if err != nil {
				return err
			}

			for _, cal := range calendars {
				marker := ""
				if cal.Primary {
					marker = " (primary)"
				}
				if !cal.Writable() {
					marker += " (read-only)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s%s\n", cal.ID, cal.Summary, marker)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	return cmd
}
