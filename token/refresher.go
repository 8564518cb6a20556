// Package token decides whether the current access token is usable and
// performs the refresh grant when it is not.
package token

import (
	"context"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/albumgate/albumgate/claims"
	"github.com/albumgate/albumgate/internal/errors"
	"github.com/albumgate/albumgate/server/session"
)

// Status is the outcome of a refresh-if-necessary decision.
type Status int

const (
	// StatusAnonymous means there was nothing to recover: no refresh token
	// and no usable access token. The caller was never logged in, or the
	// session aged out completely. No side effects are required.
	StatusAnonymous Status = iota
	// StatusActive means the session holds a usable access token, either the
	// existing one or a freshly refreshed one.
	StatusActive
	// StatusExpired means a session existed but the provider rejected (or
	// the network lost) the refresh. The caller must clear the session and
	// force re-authentication.
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	default:
		return "anonymous"
	}
}

// Result carries the decision and the session the caller should proceed
// with. Refreshed is true when the session differs from the input and must
// be committed to the store.
type Result struct {
	Status         Status
	Session        session.Session
	AccessTokenTTL time.Duration
	Refreshed      bool
}

// ConfigSource supplies the oauth2 configuration used for the refresh grant.
type ConfigSource func(ctx context.Context) (*oauth2.Config, error)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Refresher implements the refresh decision table. Concurrent refreshes for
// the same refresh token are collapsed into one provider call; losers of the
// race share the winner's result, which matters when the provider rotates
// refresh tokens on use.
type Refresher struct {
	configSource ConfigSource
	lookahead    time.Duration
	timeout      time.Duration
	group        singleflight.Group
}

// NewRefresher creates a Refresher. lookahead is the window before expiry in
// which a refresh happens proactively; timeout bounds each provider call, a
// timeout is a refresh failure, not a crash.
func NewRefresher(configSource ConfigSource, lookahead, timeout time.Duration) *Refresher {
	if lookahead <= 0 {
		lookahead = claims.ExpiryLookahead
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Refresher{
		configSource: configSource,
		lookahead:    lookahead,
		timeout:      timeout,
	}
}

// EnsureFresh guarantees that the returned session either carries a valid,
// not-imminently-expiring access token (StatusActive), or that the caller
// learns the session is unrecoverable (StatusAnonymous) or must be cleared
// (StatusExpired).
func (rf *Refresher) EnsureFresh(ctx context.Context, sess session.Session) (Result, error) {
	accessClaims, hasClaims := claims.PeekAccessToken(sess.AccessToken)
	// No claims reads the same as expired: an opaque or mangled token cannot
	// be trusted to outlive this request.
	expired := !hasClaims || accessClaims.Expired()

	if sess.RefreshToken == "" {
		if !expired {
			return Result{Status: StatusActive, Session: sess}, nil
		}
		return Result{Status: StatusAnonymous}, nil
	}

	// A refresh token alone is no reason to refresh.
	if !expired && !accessClaims.ExpiresWithin(rf.lookahead) {
		return Result{Status: StatusActive, Session: sess}, nil
	}

	newToken, err := rf.refreshGrant(ctx, sess.RefreshToken)
	if err != nil {
		return Result{Status: StatusExpired}, errors.Wrapf(errors.ErrRefreshFailed, "refresh grant rejected (%v)", err)
	}

	refreshed := session.Session{
		AccessToken:   newToken.AccessToken,
		RefreshToken:  sess.RefreshToken,
		IdentityToken: sess.IdentityToken,
	}
	// Adopt the rotated refresh token when the provider returned one.
	if newToken.RefreshToken != "" {
		refreshed.RefreshToken = newToken.RefreshToken
	}

	ttl := time.Duration(0)
	if !newToken.Expiry.IsZero() {
		ttl = newToken.Expiry.Sub(NowTimeFunc())
	}

	return Result{
		Status:         StatusActive,
		Session:        refreshed,
		AccessTokenTTL: ttl,
		Refreshed:      true,
	}, nil
}

func (rf *Refresher) refreshGrant(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	v, err, _ := rf.group.Do(refreshToken, func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, rf.timeout)
		defer cancel()

		cfg, err := rf.configSource(ctx)
		if err != nil {
			return nil, err
		}

		return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	})
	if err != nil {
		return nil, err
	}
	return v.(*oauth2.Token), nil
}
