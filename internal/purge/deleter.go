package purge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/teemow/calsweep/internal/instrumentation"
	"github.com/teemow/calsweep/internal/logging"
)

// DefaultBaseURL is the Google Calendar v3 REST endpoint.
const DefaultBaseURL = "https://www.googleapis.com/calendar/v3"

// CredentialProvider supplies bearer credentials for the remote calendar
// API. Implementations must support interactive re-authentication;
// Invalidate drops a credential that the remote service rejected so the
// next Credential call returns a fresh one.
type CredentialProvider interface {
	Credential(ctx context.Context) (string, error)
	Invalidate(credential string)
}

// Deleter removes a single event from a remote calendar.
type Deleter interface {
	Delete(ctx context.Context, calendarID, eventID string) error
}

// Client performs single-event deletions against the calendar REST API.
// On an authorization-expired response it invalidates the cached credential
// and retries the delete exactly once with a freshly obtained one; a second
// authorization failure is fatal.
type Client struct {
	httpClient  *http.Client
	credentials CredentialProvider
	baseURL     string
	logger      logging.Logger
}

// ClientConfig holds the optional knobs for a deletion client.
type ClientConfig struct {
	// HTTPClient defaults to an http.Client with a 30s timeout.
	HTTPClient *http.Client

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Logger defaults to the slog default logger.
	Logger logging.Logger
}

// NewClient creates a deletion client backed by the given credential
// provider.
func NewClient(credentials CredentialProvider, config ClientConfig) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	return &Client{
		httpClient:  httpClient,
		credentials: credentials,
		baseURL:     baseURL,
		logger:      logger,
	}
}

// Delete removes one event from the given calendar.
func (c *Client) Delete(ctx context.Context, calendarID, eventID string) (err error) {
	if calendarID == "" || eventID == "" {
		return fmt.Errorf("calendar ID and event ID are required")
	}

	ctx, span := instrumentation.StartCalendarAPISpan(ctx, instrumentation.OperationDelete,
		instrumentation.NewSpanAttributeBuilder().
			WithCalendar(calendarID).
			WithEvent(eventID).
			Build()...)
	defer func() {
		instrumentation.SetSpanError(span, err)
		span.End()
	}()

	credential, err := c.credentials.Credential(ctx)
	if err != nil {
		return &AuthError{Err: err}
	}

	err = c.deleteOnce(ctx, credential, calendarID, eventID)
	if !isUnauthorized(err) {
		return err
	}

	// The credential expired mid-run. Invalidate it and retry once with a
	// fresh one.
	c.credentials.Invalidate(credential)
	c.logger.Debug("credential rejected, retrying with a fresh one",
		logging.KeyCalendar, calendarID,
		logging.KeyEvent, eventID,
	)

	credential, err = c.credentials.Credential(ctx)
	if err != nil {
		return &AuthError{Err: err}
	}

	err = c.deleteOnce(ctx, credential, calendarID, eventID)
	if isUnauthorized(err) {
		return &AuthError{Err: err}
	}
	return err
}

// deleteOnce issues a single DELETE request for the calendar/event pair.
func (c *Client) deleteOnce(ctx context.Context, credential, calendarID, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		c.baseURL, url.PathEscape(calendarID), url.PathEscape(eventID))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return &HTTPError{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
	}
}

func isUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized
}
