// Package calendar provides a client for interacting with the Google Calendar API.
//
// This package offers the discovery side of bulk cleanup: listing calendars,
// listing events within a time range, and turning event listings into
// deletion candidates with eligibility derived from the calendar's access
// role. Deletion itself goes through the purge package.
//
// The client supports multi-account authentication using the Google OAuth2
// flow and can read events across multiple Google accounts.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := calendar.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	candidates, err := client.Candidates(ctx, "primary", from, to)
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
