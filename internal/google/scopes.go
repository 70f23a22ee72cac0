package google

// DefaultOAuthScopes are the Google OAuth scopes required for calendar
// cleanup. They are used consistently across the application for OAuth
// configurations.
//
// The scopes provide access to:
//   - Google Calendar: full access (listing and deleting events)
//   - User info: the authenticated user's email address
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Google Calendar scope (includes event deletion)
	"https://www.googleapis.com/auth/calendar",
}
