package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/calsweep/internal/calendar"
	"github.com/teemow/calsweep/internal/purge"
)

func newListCmd() *cobra.Command {
	var (
		account    string
		calendarID string
		contains   string
		fromStr    string
		toStr      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Preview the events a purge would target",
		Long: `Lists the events that match the given filter exactly as the purge
command would select them, without deleting anything. Events on
read-only calendars are shown but marked as skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseDateRange(fromStr, toStr)
			if err != nil {
				return err
			}

			client, err := calendar.NewClientForAccount(cmd.Context(), account)
			if err != nil {
				return fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
			}

			listFrom, listTo := listingBounds(from, to)
			candidates, err := client.Candidates(cmd.Context(), calendarID, listFrom, listTo)
			if err != nil {
				return err
			}

			matches := purge.Select(candidates, purge.Criteria{
				TitleKeyword: contains,
				From:         from,
				To:           to,
			})

			if len(matches) == 0 {
				if len(candidates) > 0 && !candidates[0].Eligible {
					fmt.Fprintf(cmd.OutOrStdout(), "Calendar %s is read-only; nothing would be deleted.\n", calendarID)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "No matching events.")
				return nil
			}

			renderCandidates(cmd, matches)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d matching event(s).\n", len(matches))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	cmd.Flags().StringVar(&calendarID, "calendar", "primary", "Calendar ID to inspect")
	cmd.Flags().StringVar(&contains, "contains", "", "Only match events whose title contains this keyword (case-insensitive)")
	cmd.Flags().StringVar(&fromStr, "from", "", "Only match events starting on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toStr, "to", "", "Only match events starting on or before this date (YYYY-MM-DD)")
	return cmd
}

func renderCandidates(cmd *cobra.Command, candidates []purge.CandidateEvent) {
	for _, c := range candidates {
		start := "(no start time)"
		if !c.Start.IsZero() {
			start = c.Start.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", start, c.Title, c.EventID)
	}
}
