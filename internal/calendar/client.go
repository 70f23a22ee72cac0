package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/calsweep/internal/google"
	"github.com/teemow/calsweep/internal/instrumentation"
	"github.com/teemow/calsweep/internal/purge"
)

// Client wraps the Google Calendar service
type Client struct {
	svc           *calendar.Service
	account       string // The account this client is associated with
	tokenProvider google.TokenProvider
	metrics       *instrumentation.Metrics
}

// SetMetrics attaches a metrics recorder for API operation telemetry.
// The zero recorder is a no-op, so clients work without one.
func (c *Client) SetMetrics(metrics *instrumentation.Metrics) {
	if metrics != nil {
		c.metrics = metrics
	}
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccountWithProvider checks if a valid OAuth token exists for the specified account
func HasTokenForAccountWithProvider(account string, provider google.TokenProvider) bool {
	if provider == nil {
		return false
	}
	return provider.HasTokenForAccount(account)
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	provider := google.NewFileTokenProvider()
	return HasTokenForAccountWithProvider(account, provider)
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// NewClientForAccountWithProvider creates a new Calendar client with OAuth2 authentication for a specific account
// The OAuth token is retrieved from the provided token provider
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	conf := google.GetOAuthConfig()
	tokenSource := conf.TokenSource(ctx, token)

	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	baseTransport := &http.Transport{
		ForceAttemptHTTP2: false,
	}
	transport.Base = baseTransport

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:           svc,
		account:       account,
		tokenProvider: tokenProvider,
		metrics:       &instrumentation.Metrics{},
	}, nil
}

// NewClientForAccount creates a new Calendar client with OAuth2 authentication for a specific account
// Uses the default file-based token provider
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	provider := google.NewFileTokenProvider()
	return NewClientForAccountWithProvider(ctx, account, provider)
}

// NewClient creates a new Calendar client with OAuth2 authentication for the default account
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// ListEvents lists events in a calendar within a time range. Results are
// paginated transparently so callers always see the complete set.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, query string) ([]EventSummary, error) {
	ctx, span := instrumentation.StartCalendarAPISpan(ctx, instrumentation.OperationList,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(calendarID).Build()...)
	defer span.End()

	start := time.Now()
	summaries, err := c.listEvents(ctx, calendarID, timeMin, timeMax, query)
	c.metrics.RecordCalendarAPIOperationWithCalendar(ctx,
		instrumentation.OperationList, operationStatus(err), calendarID, time.Since(start))
	instrumentation.SetSpanError(span, err)
	return summaries, err
}

func (c *Client) listEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, query string) ([]EventSummary, error) {
	var summaries []EventSummary
	pageToken := ""

	for {
		call := c.svc.Events.List(calendarID).
			TimeMin(timeMin.Format(time.RFC3339)).
			TimeMax(timeMax.Format(time.RFC3339)).
			SingleEvents(true).
			OrderBy("startTime").
			MaxResults(2500).
			Context(ctx)

		if query != "" {
			call = call.Q(query)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		events, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}

		for _, event := range events.Items {
			summaries = append(summaries, toEventSummary(event))
		}

		pageToken = events.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return summaries, nil
}

// ListCalendars lists all calendars accessible to the user
func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	ctx, span := instrumentation.StartCalendarAPISpan(ctx, instrumentation.OperationList)
	defer span.End()

	start := time.Now()
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	c.metrics.RecordCalendarAPIOperation(ctx,
		instrumentation.OperationList, operationStatus(err), time.Since(start))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	var calendars []CalendarInfo
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendarInfo(entry))
	}

	return calendars, nil
}

// GetCalendar retrieves information about a specific calendar
func (c *Client) GetCalendar(ctx context.Context, calendarID string) (*CalendarInfo, error) {
	ctx, span := instrumentation.StartCalendarAPISpan(ctx, instrumentation.OperationGet,
		instrumentation.NewSpanAttributeBuilder().WithCalendar(calendarID).Build()...)
	defer span.End()

	start := time.Now()
	entry, err := c.svc.CalendarList.Get(calendarID).Context(ctx).Do()
	c.metrics.RecordCalendarAPIOperationWithCalendar(ctx,
		instrumentation.OperationGet, operationStatus(err), calendarID, time.Since(start))
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, fmt.Errorf("failed to get calendar: %w", err)
	}

	info := toCalendarInfo(entry)
	return &info, nil
}

// GetPrimaryCalendar retrieves information about the primary calendar
func (c *Client) GetPrimaryCalendar(ctx context.Context) (*CalendarInfo, error) {
	return c.GetCalendar(ctx, "primary")
}

// Candidates lists the events of a calendar within a time range and maps
// them to deletion candidates. Eligibility is derived from the calendar's
// access role, so candidates from read-only calendars are surfaced but
// never deleted.
func (c *Client) Candidates(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]purge.CandidateEvent, error) {
	info, err := c.GetCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	events, err := c.ListEvents(ctx, calendarID, timeMin, timeMax, "")
	if err != nil {
		return nil, err
	}

	return eventCandidates(calendarID, info.Writable(), events), nil
}

func operationStatus(err error) string {
	if err != nil {
		return instrumentation.StatusError
	}
	return instrumentation.StatusSuccess
}

// eventCandidates converts event summaries to deletion candidates. The
// candidate ref is the position in the listing, which is stable for the
// lifetime of one run.
func eventCandidates(calendarID string, writable bool, events []EventSummary) []purge.CandidateEvent {
	var candidates []purge.CandidateEvent
	for i, event := range events {
		if event.Status == "cancelled" {
			continue
		}
		candidates = append(candidates, purge.CandidateEvent{
			Ref:        strconv.Itoa(i),
			EventID:    event.ID,
			CalendarID: calendarID,
			Title:      event.Summary,
			Start:      event.Start,
			Eligible:   writable,
		})
	}
	return candidates
}
