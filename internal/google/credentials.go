package google

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/calsweep/internal/instrumentation"
)

// Credentials supplies bearer tokens for a single account and supports
// invalidation when the API rejects a token. It caches the most recent
// access token; after Invalidate the next Credential call fetches a fresh
// token through the underlying provider, which refreshes it server-side.
//
// Credentials is safe for concurrent use.
type Credentials struct {
	mu       sync.Mutex
	account  string
	provider TokenProvider
	cached   *oauth2.Token
	metrics  *instrumentation.Metrics
}

// NewCredentials creates a credential source for the specified account
// backed by the given token provider.
func NewCredentials(account string, provider TokenProvider) *Credentials {
	return &Credentials{
		account:  account,
		provider: provider,
		metrics:  &instrumentation.Metrics{},
	}
}

// SetMetrics attaches a metrics recorder for credential refresh telemetry.
// The zero recorder is a no-op, so credentials work without one.
func (c *Credentials) SetMetrics(metrics *instrumentation.Metrics) {
	if metrics != nil {
		c.metrics = metrics
	}
}

// Account returns the account name these credentials belong to
func (c *Credentials) Account() string {
	return c.account
}

// Credential returns a bearer access token for the account, fetching a
// fresh one if no valid cached token is available.
func (c *Credentials) Credential(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.cached.Valid() {
		return c.cached.AccessToken, nil
	}

	token, err := c.provider.GetTokenForAccount(ctx, c.account)
	if err != nil {
		c.metrics.RecordCredentialRefresh(ctx, instrumentation.OAuthResultFailure)
		return "", fmt.Errorf("failed to get OAuth token for account %s: %w", c.account, err)
	}

	c.metrics.RecordCredentialRefresh(ctx, instrumentation.OAuthResultSuccess)
	c.cached = token
	return token.AccessToken, nil
}

// Invalidate discards the cached token if it matches the rejected
// credential. Tokens obtained after the rejection are left intact.
func (c *Credentials) Invalidate(credential string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.cached.AccessToken == credential {
		c.cached = nil
	}
}
