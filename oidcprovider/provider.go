// Package oidcprovider caches the identity provider's discovery document for
// the process lifetime. The document changes rarely; there is no invalidation
// beyond a restart.
package oidcprovider

import (
	"context"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/albumgate/albumgate/internal/errors"
)

// Bundle holds everything derived from one discovery fetch.
type Bundle struct {
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
	Verifier     *oidc.IDTokenVerifier
}

// Cache lazily discovers the provider on first use. First access is
// single-flighted so concurrent requests share one discovery fetch; the
// result is then read-only for the rest of the process lifetime.
type Cache struct {
	issuerURL    string
	clientID     string
	clientSecret string
	redirectURL  string
	scopes       []string

	group  singleflight.Group
	mu     sync.RWMutex
	bundle *Bundle
}

func NewCache(issuerURL, clientID, clientSecret, redirectURL string, scopes []string) *Cache {
	return &Cache{
		issuerURL:    issuerURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		scopes:       scopes,
	}
}

// Get returns the cached bundle, fetching the discovery document on first
// call. A fetch failure is a configuration error and is not cached, so a
// later request may retry.
func (c *Cache) Get(ctx context.Context) (*Bundle, error) {
	c.mu.RLock()
	bundle := c.bundle
	c.mu.RUnlock()
	if bundle != nil {
		return bundle, nil
	}

	v, err, _ := c.group.Do("discovery", func() (any, error) {
		provider, err := oidc.NewProvider(ctx, c.issuerURL)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrConfiguration, "discovering provider %q failed (%v)", c.issuerURL, err)
		}

		b := &Bundle{
			Provider: provider,
			OAuth2Config: &oauth2.Config{
				ClientID:     c.clientID,
				ClientSecret: c.clientSecret,
				Endpoint:     provider.Endpoint(),
				RedirectURL:  c.redirectURL,
				Scopes:       c.scopes,
			},
			Verifier: provider.Verifier(&oidc.Config{ClientID: c.clientID}),
		}

		c.mu.Lock()
		c.bundle = b
		c.mu.Unlock()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bundle), nil
}
