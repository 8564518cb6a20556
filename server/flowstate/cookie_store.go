package flowstate

import (
	"net/http"
	"time"

	"github.com/albumgate/albumgate/internal/errors"
)

const (
	stateCookie        = "oauth-state"
	nonceCookie        = "oauth-nonce"
	codeVerifierCookie = "oauth-code-verifier"
	redirectCookie     = "oauth-redirect-after-login"
)

// CookieStore carries flow state in per-browser cookies. SameSite must stay
// Lax: the callback is a cross-site redirect back from the identity provider
// and Strict cookies would not accompany it.
type CookieStore struct {
	TTL    time.Duration
	Secure func(r *http.Request) bool
}

var _ Store = (*CookieStore)(nil)

// NewCookieStore creates a cookie-backed flow state store. secure decides
// whether the Secure attribute is set, based on the incoming request scheme.
func NewCookieStore(ttl time.Duration, secure func(r *http.Request) bool) *CookieStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CookieStore{TTL: ttl, Secure: secure}
}

// Write stores all four flow-state entries with the configured TTL.
func (s *CookieStore) Write(w http.ResponseWriter, r *http.Request, state AuthFlowState) error {
	maxAge := int(s.TTL.Seconds())
	s.set(w, r, stateCookie, state.State, maxAge)
	s.set(w, r, nonceCookie, state.Nonce, maxAge)
	s.set(w, r, codeVerifierCookie, state.CodeVerifier, maxAge)
	s.set(w, r, redirectCookie, state.RedirectAfterLogin, maxAge)
	return nil
}

// Get reads the stored flow state. A missing state, nonce or verifier cookie
// means the login attempt expired or never existed.
func (s *CookieStore) Get(r *http.Request) (AuthFlowState, error) {
	state, err := cookieValue(r, stateCookie)
	if err != nil {
		return AuthFlowState{}, err
	}
	nonce, err := cookieValue(r, nonceCookie)
	if err != nil {
		return AuthFlowState{}, err
	}
	verifier, err := cookieValue(r, codeVerifierCookie)
	if err != nil {
		return AuthFlowState{}, err
	}

	// The redirect target is optional, an absent cookie falls back to root.
	redirect := "/"
	if c, err := r.Cookie(redirectCookie); err == nil && c.Value != "" {
		redirect = c.Value
	}

	return AuthFlowState{
		State:              state,
		Nonce:              nonce,
		CodeVerifier:       verifier,
		RedirectAfterLogin: redirect,
	}, nil
}

// Clear deletes all flow-state entries. Idempotent.
func (s *CookieStore) Clear(w http.ResponseWriter, r *http.Request) {
	for _, name := range []string{stateCookie, nonceCookie, codeVerifierCookie, redirectCookie} {
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
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *CookieStore) secure(r *http.Request) bool {
	if s.Secure == nil {
		return r.TLS != nil
	}
	return s.Secure(r)
}

func cookieValue(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", errors.Wrapf(errors.ErrMissingFlowState, "cookie %q", name)
	}
	return c.Value, nil
}
