package oidcprovider_test

import (
	"context"
	"testing"

	"github.com/oauth2-proxy/mockoidc"
	"github.com/stretchr/testify/require"

	"github.com/albumgate/albumgate/internal/errors"
	"github.com/albumgate/albumgate/oidcprovider"
)

func TestGetDiscoversAndCaches(t *testing.T) {
	m, err := mockoidc.Run()
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown() })

	cache := oidcprovider.NewCache(m.Issuer(), m.ClientID, m.ClientSecret, "http://localhost/auth/callback", []string{"openid"})

	bundle, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, bundle.Provider)
	require.NotNil(t, bundle.Verifier)
	require.Equal(t, m.ClientID, bundle.OAuth2Config.ClientID)
	require.NotEmpty(t, bundle.OAuth2Config.Endpoint.AuthURL)
	require.NotEmpty(t, bundle.OAuth2Config.Endpoint.TokenURL)

	again, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Same(t, bundle, again)
}

func TestGetUnreachableIssuer(t *testing.T) {
	cache := oidcprovider.NewCache("http://127.0.0.1:1", "client", "secret", "http://localhost/auth/callback", []string{"openid"})

	_, err := cache.Get(context.Background())
	require.ErrorIs(t, err, errors.ErrConfiguration)

	// A failed discovery is not cached, the next call retries.
	_, err = cache.Get(context.Background())
	require.ErrorIs(t, err, errors.ErrConfiguration)
}
