package models

import "net/http"

// Session carries the caller's upstream credentials through a single
// request: the cookies of the cookie-based upstream session, the
// anti-forgery token for mutating calls, and the resolved account when
// known. The token is re-read from the incoming request on every call, so
// refreshes after login, registration and profile updates propagate
// without any process-wide state.
type Session struct {
	Account   *Account
	CSRFToken string
	Cookies   []*http.Cookie

	// SearchID keys the remote-search working set for this browser.
	SearchID string
}

// Authenticated reports whether an upstream account was resolved.
func (s *Session) Authenticated() bool {
	return s != nil && s.Account != nil
}
