package google

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

// fakeTokenProvider returns a new token on every call so tests can observe
// cache hits and refreshes.
type fakeTokenProvider struct {
	calls int
	err   error
}

func (p *fakeTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.calls++
	return &oauth2.Token{
		AccessToken: fmt.Sprintf("token-%d", p.calls),
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func (p *fakeTokenProvider) HasTokenForAccount(account string) bool {
	return p.err == nil
}

func TestCredentialsCachesToken(t *testing.T) {
	provider := &fakeTokenProvider{}
	creds := NewCredentials("work", provider)

	first, err := creds.Credential(context.Background())
	if err != nil {
		t.Fatalf("Credential() error = %v", err)
	}
	second, err := creds.Credential(context.Background())
	if err != nil {
		t.Fatalf("Credential() error = %v", err)
	}

	if first != second {
		t.Errorf("Credential() = %q, want cached %q", second, first)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestCredentialsInvalidateForcesRefresh(t *testing.T) {
	provider := &fakeTokenProvider{}
	creds := NewCredentials("work", provider)

	first, err := creds.Credential(context.Background())
	if err != nil {
		t.Fatalf("Credential() error = %v", err)
	}

	creds.Invalidate(first)

	second, err := creds.Credential(context.Background())
	if err != nil {
		t.Fatalf("Credential() error = %v", err)
	}
	if first == second {
		t.Error("Credential() after Invalidate should return a fresh token")
	}
}

func TestCredentialsInvalidateIgnoresStaleCredential(t *testing.T) {
	provider := &fakeTokenProvider{}
	creds := NewCredentials("work", provider)

	current, err := creds.Credential(context.Background())
	if err != nil {
		t.Fatalf("Credential() error = %v", err)
	}

	// A rejection report for a credential that has already been replaced
	// must not discard the current token.
	creds.Invalidate("token-stale")

	again, err := creds.Credential(context.Background())
	if err != nil {
		t.Fatalf("Credential() error = %v", err)
	}
	if again != current {
		t.Errorf("Credential() = %q, want unchanged %q", again, current)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestCredentialsPropagatesProviderError(t *testing.T) {
	provider := &fakeTokenProvider{err: fmt.Errorf("no token on disk")}
	creds := NewCredentials("missing", provider)

	if _, err := creds.Credential(context.Background()); err == nil {
		t.Error("Credential() should fail when the provider has no token")
	}
}

func TestCredentialsAccount(t *testing.T) {
	creds := NewCredentials("personal", &fakeTokenProvider{})
	if got := creds.Account(); got != "personal" {
		t.Errorf("Account() = %q, want %q", got, "personal")
	}
}
