package session

import (
	"net/http"
	"time"
)

const (
	accessTokenCookie    = "access-token"
	refreshTokenCookie   = "refresh-token"
	identityClaimsCookie = "identity-claims"
)

// CookieStore keeps the session in browser cookies. The browser is the only
// store; the server holds no session state. Session cookies are SameSite
// Strict, they never need to survive a cross-site redirect.
type CookieStore struct {
	RefreshTokenMaxAge   time.Duration
	IdentityClaimsMaxAge time.Duration
	Secure               func(r *http.Request) bool
}

var _ Store = (*CookieStore)(nil)

func NewCookieStore(refreshMaxAge, identityMaxAge time.Duration, secure func(r *http.Request) bool) *CookieStore {
	if refreshMaxAge <= 0 {
		refreshMaxAge = 30 * 24 * time.Hour
	}
	if identityMaxAge <= 0 {
		identityMaxAge = 30 * 24 * time.Hour
	}
	return &CookieStore{
		RefreshTokenMaxAge:   refreshMaxAge,
		IdentityClaimsMaxAge: identityMaxAge,
		Secure:               secure,
	}
}

// Write commits the full session. The access-token cookie lives exactly as
// long as the token itself; refresh and identity cookies get their long
// max-age.
func (s *CookieStore) Write(w http.ResponseWriter, r *http.Request, sess Session, accessTokenTTL time.Duration) error {
	s.set(w, r, accessTokenCookie, sess.AccessToken, int(accessTokenTTL.Seconds()))
	s.set(w, r, refreshTokenCookie, sess.RefreshToken, int(s.RefreshTokenMaxAge.Seconds()))
	s.set(w, r, identityClaimsCookie, sess.IdentityToken, int(s.IdentityClaimsMaxAge.Seconds()))
	return nil
}

// Get returns whatever session fields the browser still carries. Absent
// cookies read as empty fields.
func (s *CookieStore) Get(r *http.Request) Session {
	return Session{
		AccessToken:   cookieValue(r, accessTokenCookie),
		RefreshToken:  cookieValue(r, refreshTokenCookie),
		IdentityToken: cookieValue(r, identityClaimsCookie),
	}
}

// Clear deletes all three session fields. Idempotent.
func (s *CookieStore) Clear(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie, identityClaimsCookie} {
		s.set(w, r, name, "", -1)
	}
}

func (s *CookieStore) set(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

func (s *CookieStore) secure(r *http.Request) bool {
	if s.Secure == nil {
		return r.TLS != nil
	}
	return s.Secure(r)
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
