// Package purge implements the bulk deletion engine for calendar events.
//
// The engine takes a set of candidate events discovered by a collaborator,
// narrows it down with pure filter criteria, and drives rate-limited,
// batched deletions against the remote calendar API. Failures are captured
// per event and classified as retryable or fatal; one event's failure never
// aborts its siblings.
//
// Example usage:
//
//	limiter := purge.NewRateLimiter(10, time.Second)
//	engine := purge.NewEngine(deleter, limiter, purge.EngineConfig{})
//
//	eligible := purge.Select(candidates, purge.Criteria{TitleKeyword: "standup"})
//	report, err := engine.Run(ctx, eligible, purge.DefaultBatchSize)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("deleted %d, failed %d\n", len(report.Successful), len(report.Failed))
package purge
