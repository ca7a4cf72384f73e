// Package session owns the OAuth2 access token lifecycle for the mail
// provider: acquisition, persistence, expiry checking, silent refresh,
// and revocation.
//
// The Manager moves through an explicit lifecycle:
//
//	Uninitialized -> Initializing -> {SignedOut, SignedIn}
//
// SignIn transitions SignedOut to SignedIn; SignOut or a verification
// failure transitions back. A successful silent refresh replaces the
// token without changing state.
//
// Tokens are persisted as a JSON file under the user cache directory and
// treated as absent when missing or corrupt. A session within five
// minutes of expiry is already considered expired so operations never
// race the provider's own expiry check.
package session
