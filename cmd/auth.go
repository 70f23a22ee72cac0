package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/calsweep/internal/google"
	"github.com/teemow/calsweep/internal/instrumentation"
	"github.com/teemow/calsweep/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize calsweep to access a Google account",
		Long: `Runs the OAuth out-of-band flow for the given account and stores the
resulting token in the user cache directory. Each account gets its own
token, so multiple Google accounts can be authorized side by side.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := google.MigrateDefaultToken(); err != nil {
				slog.Warn("token migration failed", logging.Err(err))
			}

			if google.HasTokenForAccount(account) {
				fmt.Fprintf(cmd.OutOrStdout(), "Account %q is already authorized.\n", account)
				return nil
			}

			authURL, err := google.GetAuthURLForAccount(account)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Open the following URL in your browser:\n\n  %s\n\nEnter the authorization code: ", authURL)
			reader := bufio.NewReader(cmd.InOrStdin())
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			ctx := cmd.Context()
			metrics := authMetrics(ctx)
			if err := google.SaveTokenForAccount(ctx, account, code); err != nil {
				metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
				return fmt.Errorf("failed to save token for account %s: %w", account, err)
			}
			metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

			fmt.Fprintf(cmd.OutOrStdout(), "Authorization for account %q saved.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize")
	return cmd
}

// authMetrics creates a best-effort metrics recorder for the auth flow.
// When instrumentation is disabled or fails to initialize, a no-op
// recorder is returned so authorization still works.
func authMetrics(ctx context.Context) *instrumentation.Metrics {
	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
	if err != nil {
		return &instrumentation.Metrics{}
	}
	return provider.Metrics()
}
