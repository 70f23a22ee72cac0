package google

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// accountNamePattern restricts account names to characters that are safe
// in file names across platforms.
var accountNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateAccountName checks that an account name is safe to use as part
// of a token file name.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only alphanumeric characters, hyphens and underscores are allowed", account)
	}
	return nil
}

// getTokenFilePath returns the path of the token file for an account.
// Each account gets its own token file, e.g. google-work.token.
func getTokenFilePath(account string) string {
	cacheDir := filepath.Join(userCacheDir(), "calsweep")
	return filepath.Join(cacheDir, fmt.Sprintf("google-%s.token", account))
}

// GetOAuthConfig returns the OAuth2 configuration for the Google Calendar API.
// Client credentials are read from the environment so that users can bring
// their own Google Cloud project.
func GetOAuthConfig() *oauth2.Config {
	const OOB = "urn:ietf:wg:oauth:2.0:oob"
	return &oauth2.Config{
		ClientID:     os.Getenv("CALSWEEP_GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("CALSWEEP_GOOGLE_CLIENT_SECRET"),
		Endpoint:     google.Endpoint,
		RedirectURL:  OOB,
		Scopes:       DefaultOAuthScopes,
	}
}

// HasTokenForAccount checks if an OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.ReadFile(getTokenFilePath(account))
	return err == nil
}

// HasToken checks if an OAuth token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// GetAuthURLForAccount returns the OAuth URL for user authorization of the
// specified account
func GetAuthURLForAccount(account string) (string, error) {
	if err := validateAccountName(account); err != nil {
		return "", err
	}
	conf := GetOAuthConfig()
	if err := validateOAuthConfig(conf); err != nil {
		return "", err
	}
	return conf.AuthCodeURL("state"), nil
}

// validateOAuthConfig checks that client credentials are configured.
func validateOAuthConfig(conf *oauth2.Config) error {
	if conf.ClientID == "" || conf.ClientSecret == "" {
		return fmt.Errorf("Google OAuth client credentials are not configured: set CALSWEEP_GOOGLE_CLIENT_ID and CALSWEEP_GOOGLE_CLIENT_SECRET")
	}
	return nil
}

// GetAuthURL returns the OAuth URL for user authorization of the default account
func GetAuthURL() string {
	url, _ := GetAuthURLForAccount("default")
	return url
}

// SaveTokenForAccount exchanges an authorization code for tokens and saves
// them for the specified account
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	conf := GetOAuthConfig()
	if err := validateOAuthConfig(conf); err != nil {
		return err
	}

	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	tokenFile := getTokenFilePath(account)
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(tokenFile, []byte(tokenData), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// SaveToken exchanges an authorization code for tokens and saves them for
// the default account
func SaveToken(ctx context.Context, authCode string) error {
	return SaveTokenForAccount(ctx, "default", authCode)
}

// GetTokenSourceForAccount returns an OAuth2 token source for the stored
// token of the specified account. The cached access token is treated as
// expired so that the source refreshes it on first use.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	conf := GetOAuthConfig()

	slurp, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s", account)
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, fmt.Errorf("invalid token format for account %s", account)
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	return oauth2.ReuseTokenSource(nil, ts), nil
}

// GetTokenSource returns an OAuth2 token source for the default account
func GetTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	return GetTokenSourceForAccount(ctx, "default")
}

// MigrateDefaultToken moves a legacy single-account token file to the
// per-account naming scheme. It is idempotent and safe to call on every
// startup.
func MigrateDefaultToken() error {
	cacheDir := filepath.Join(userCacheDir(), "calsweep")
	oldTokenFile := filepath.Join(cacheDir, "google.token")
	newTokenFile := getTokenFilePath("default")

	if _, err := os.Stat(oldTokenFile); os.IsNotExist(err) {
		return nil
	}

	// Never clobber an existing per-account token.
	if _, err := os.Stat(newTokenFile); err == nil {
		return os.Remove(oldTokenFile)
	}

	if err := os.Rename(oldTokenFile, newTokenFile); err != nil {
		return fmt.Errorf("failed to migrate token file: %w", err)
	}

	return nil
}

// GetAuthenticationErrorMessage returns a user-facing message explaining
// how to authenticate the specified account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("no OAuth token found for account %q: run 'calsweep auth --account %s' to authorize access", account, account)
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
