// Package google provides shared Google OAuth2 authentication for calsweep.
//
// Tokens are stored per account in the user cache directory as
// google-<account>.token files. The package exposes a TokenProvider
// abstraction so that clients can be wired to alternative token sources
// in tests, and a Credentials type that adapts a TokenProvider to the
// bearer-token interface the deletion client consumes, including
// invalidation of tokens the API has rejected.
//
// OAuth client credentials are read from the CALSWEEP_GOOGLE_CLIENT_ID
// and CALSWEEP_GOOGLE_CLIENT_SECRET environment variables.
package google
