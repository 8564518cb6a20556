// Package session persists the long-lived browser session: access token,
// refresh token and identity token, each with its own expiry.
package session

import (
	"net/http"
	"time"
)

// Session is the authenticated browser state. The three fields are always
// written together; the browser expires them independently, so a read may
// return a session whose access token is already gone while the refresh
// token survives.
type Session struct {
	AccessToken   string
	RefreshToken  string
	IdentityToken string
}

// IsZero reports whether no session field is present at all.
func (s Session) IsZero() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.IdentityToken == ""
}

type Store interface {
	// Write commits all three session fields in one call. accessTokenTTL is
	// the lifetime the provider granted the access token.
	Write(w http.ResponseWriter, r *http.Request, sess Session, accessTokenTTL time.Duration) error
	Get(r *http.Request) Session
	Clear(w http.ResponseWriter, r *http.Request)
}
