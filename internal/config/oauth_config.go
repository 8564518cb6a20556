package config

import "time"

type OAuthConfig interface {
	GetScopes() []string
	GetFlowStateTimeout() time.Duration
	GetRefreshLookahead() time.Duration
	GetProviderTimeout() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetScopes returns the scopes requested from the identity provider.
func (OAuth) GetScopes() []string {
	return []string{"openid", "profile", "email"}
}

// GetFlowStateTimeout is how long an unconsumed login attempt stays valid.
func (OAuth) GetFlowStateTimeout() time.Duration {
	return 10 * time.Minute
}

// GetRefreshLookahead is the window before access-token expiry in which a
// refresh is attempted proactively.
func (OAuth) GetRefreshLookahead() time.Duration {
	return 5 * time.Minute
}

// GetProviderTimeout bounds every network call to the identity provider.
// A timeout is treated as an exchange/refresh failure, never a crash.
func (OAuth) GetProviderTimeout() time.Duration {
	return 10 * time.Second
}
