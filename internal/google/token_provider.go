package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider abstracts where OAuth tokens come from, so credentials can
// be backed by disk in the CLI and by fakes in tests.
type TokenProvider interface {
	// GetTokenForAccount returns a valid OAuth token for the account.
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount reports whether a token exists for the account
	// without triggering an interactive flow.
	HasTokenForAccount(account string) bool
}

// FileTokenProvider reads tokens from the per-account files in the user
// cache directory.
type FileTokenProvider struct{}

func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read token for account %q: %w", account, err)
	}
	return token, nil
}

func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}
