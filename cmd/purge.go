package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calsweep/internal/calendar"
	"github.com/teemow/calsweep/internal/google"
	"github.com/teemow/calsweep/internal/instrumentation"
	"github.com/teemow/calsweep/internal/logging"
	"github.com/teemow/calsweep/internal/purge"
	"github.com/teemow/calsweep/internal/server"
)

func newPurgeCmd() *cobra.Command {
	var (
		account     string
		calendarID  string
		contains    string
		fromStr     string
		toStr       string
		batchSize   int
		maxRequests int
		window      time.Duration
		yes         bool
		dryRun      bool
		metricsOn   bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Bulk-delete calendar events matching a filter",
		Long: `Deletes every event on the given calendar whose title contains the
keyword, optionally narrowed to a date range.

Deletions run in consecutive batches. Within a batch they run
concurrently, throttled by a sliding-window rate limit shared across
the whole run. One event failing never aborts the others; the run
always finishes with a report accounting for every selected event.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if contains == "" && fromStr == "" && toStr == "" {
				return fmt.Errorf("refusing to purge without a filter: set --contains, --from or --to")
			}
			if maxRequests <= 0 {
				return fmt.Errorf("--max-requests must be positive, got %d", maxRequests)
			}
			if window <= 0 {
				return fmt.Errorf("--window must be positive, got %s", window)
			}

			from, to, err := parseDateRange(fromStr, toStr)
			if err != nil {
				return err
			}

			// Initialize instrumentation provider
			instrConfig := instrumentation.DefaultConfig()
			instrConfig.ServiceVersion = version

			provider, err := instrumentation.NewProvider(ctx, instrConfig)
			if err != nil {
				return fmt.Errorf("failed to create instrumentation provider: %w", err)
			}
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
				defer shutdownCancel()
				if err := provider.Shutdown(shutdownCtx); err != nil {
					slog.Warn("error during instrumentation shutdown", logging.Err(err))
				}
			}()

			// Load metrics config from environment if not set via flags
			if !metricsOn && os.Getenv("METRICS_ENABLED") == "true" {
				metricsOn = true
			}
			if metricsAddr == server.DefaultMetricsAddr {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					metricsAddr = addr
				}
			}

			if metricsOn && provider.Enabled() {
				metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
					Addr:                    metricsAddr,
					Enabled:                 true,
					InstrumentationProvider: provider,
				})
				if err != nil {
					return fmt.Errorf("failed to create metrics server: %w", err)
				}

				metricsReady := make(chan struct{})
				metricsErr := make(chan error, 1)
				go func() {
					if err := metricsServer.Start(metricsReady); err != nil && err != http.ErrServerClosed {
						metricsErr <- err
					}
					close(metricsErr)
				}()

				select {
				case <-metricsReady:
				case err := <-metricsErr:
					return fmt.Errorf("metrics server failed to start: %w", err)
				case <-time.After(5 * time.Second):
					return fmt.Errorf("metrics server startup timed out")
				}
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					_ = metricsServer.Shutdown(shutdownCtx)
				}()
			}

			if err := google.MigrateDefaultToken(); err != nil {
				slog.Warn("token migration failed", logging.Err(err))
			}

			client, err := calendar.NewClientForAccount(ctx, account)
			if err != nil {
				return fmt.Errorf("failed to create Calendar client for account %s: %w", account, err)
			}
			client.SetMetrics(provider.Metrics())

			listFrom, listTo := listingBounds(from, to)
			candidates, err := client.Candidates(ctx, calendarID, listFrom, listTo)
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
					return fmt.Errorf("calendar %s is read-only; nothing can be deleted", calendarID)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "No matching events to delete.")
				return nil
			}

			renderCandidates(cmd, matches)
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "\nDry run: %d event(s) would be deleted.\n", len(matches))
				return nil
			}

			if !yes && !confirmDeletion(cmd, len(matches), calendarID) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}

			ctx, runSpan := instrumentation.StartSpan(ctx, "purge",
				instrumentation.NewSpanAttributeBuilder().
					WithOperation("purge").
					WithAccount(account).
					WithCalendar(calendarID).
					WithEventCount(len(matches)).
					Build()...)
			defer runSpan.End()
			instrumentation.AddSpanEvent(runSpan, "deletion confirmed")

			purgeLog := logging.WithCalendar(logging.WithOperation(slog.Default(), "purge"), calendarID)

			credentials := google.NewCredentials(account, google.NewFileTokenProvider())
			credentials.SetMetrics(provider.Metrics())
			deleter := purge.NewClient(credentials, purge.ClientConfig{
				Logger: logging.NewSlogAdapter(purgeLog),
			})
			limiter := purge.NewRateLimiter(maxRequests, window)
			limiter.SetLogger(logging.NewSlogAdapter(purgeLog))
			engine := purge.NewEngine(deleter, limiter, purge.EngineConfig{
				Logger:  logging.NewSlogAdapter(purgeLog),
				Metrics: provider.Metrics(),
				Tracer:  provider.Tracer(instrumentation.TracerName),
			})

			auditLogger := instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging)
			invocation := instrumentation.NewRunInvocation("purge").
				WithAccount(account).
				WithCalendar(calendarID)

			report, err := engine.Run(ctx, matches, batchSize)
			if err != nil {
				instrumentation.SetSpanError(runSpan, err)
				auditLogger.LogRun(invocation.WithSpanContext(ctx).CompleteWithError(err))
				return err
			}

			invocation.
				WithCounts(len(matches), len(report.Successful), len(report.Failed)).
				WithSpanContext(ctx).
				Complete(len(report.Failed) == 0, nil)
			auditLogger.LogRun(invocation)
			auditLogger.LogRunAudit(invocation)

			renderReport(cmd, report)
			if len(report.Failed) > 0 {
				err := fmt.Errorf("%d of %d deletions failed", len(report.Failed), report.Total())
				instrumentation.SetSpanError(runSpan, err)
				if tc := instrumentation.SpanContextString(ctx); tc != "" {
					slog.Warn("purge finished with failures", logging.Err(err), "trace", tc)
				}
				return err
			}
			instrumentation.SetSpanSuccess(runSpan)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to use")
	cmd.Flags().StringVar(&calendarID, "calendar", "primary", "Calendar ID to purge")
	cmd.Flags().StringVar(&contains, "contains", "", "Only delete events whose title contains this keyword (case-insensitive)")
	cmd.Flags().StringVar(&fromStr, "from", "", "Only delete events starting on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toStr, "to", "", "Only delete events starting on or before this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&batchSize, "batch-size", purge.DefaultBatchSize, "Number of deletions dispatched concurrently per batch")
	cmd.Flags().IntVar(&maxRequests, "max-requests", 10, "Maximum delete requests per rate limit window")
	cmd.Flags().DurationVar(&window, "window", time.Minute, "Sliding rate limit window")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be deleted without deleting anything")
	cmd.Flags().BoolVar(&metricsOn, "metrics", false, "Serve Prometheus metrics while the purge runs")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Address for the metrics server")
	return cmd
}

func confirmDeletion(cmd *cobra.Command, count int, calendarID string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "\nDelete %d event(s) from calendar %s? This cannot be undone. [y/N]: ", count, calendarID)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func renderReport(cmd *cobra.Command, report *purge.DeletionReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nDeleted %d of %d event(s).\n", len(report.Successful), report.Total())

	if len(report.Failed) == 0 {
		return
	}

	fmt.Fprintf(out, "\nFailed:\n")
	for _, f := range report.Failed {
		marker := ""
		if f.Retryable {
			marker = " (retryable)"
		}
		fmt.Fprintf(out, "  %s\t%s: %s%s\n", f.EventID, f.Title, f.ErrorMessage, marker)
	}
	if len(report.RetryableFailures()) > 0 {
		fmt.Fprintln(out, "\nFailures marked retryable are transient; run the same purge again to pick them up.")
	}
}

// parseDateRange parses the --from and --to flags. The --to date is
// inclusive, so the bound extends to the end of that day.
func parseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	var from, to time.Time

	if fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q: expected YYYY-MM-DD", fromStr)
		}
		from = parsed
	}
	if toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date %q: expected YYYY-MM-DD", toStr)
		}
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to date is before --from date")
	}

	return from, to, nil
}

// listingBounds widens unset date bounds so the event listing covers
// everything the filter could match.
func listingBounds(from, to time.Time) (time.Time, time.Time) {
	now := time.Now()
	if from.IsZero() {
		from = now.AddDate(-10, 0, 0)
	}
	if to.IsZero() {
		to = now.AddDate(1, 0, 0)
	}
	return from, to
}
