package claims_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/albumgate/albumgate/claims"
)

// encodeToken builds a structurally valid but unsigned JWT. The claims
// package never checks signatures, so a fake signature segment is enough.
func encodeToken(t *testing.T, payload map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]any{"alg": "RS256", "typ": "JWT"})
	require.NoError(t, err)
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(body) + "." + enc.EncodeToString([]byte("sig"))
}

func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	claims.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { claims.NowTimeFunc = time.Now })
}

func TestPeekAccessTokenExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	withFixedNow(t, now)

	tests := []struct {
		name          string
		expiresIn     time.Duration
		wantExpired   bool
		wantAboutToGo bool
	}{
		{name: "fresh token", expiresIn: time.Hour, wantExpired: false, wantAboutToGo: false},
		{name: "expiring soon", expiresIn: 60 * time.Second, wantExpired: false, wantAboutToGo: true},
		{name: "already expired", expiresIn: -100 * time.Second, wantExpired: true, wantAboutToGo: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := encodeToken(t, map[string]any{"exp": now.Add(tc.expiresIn).Unix()})

			c, ok := claims.PeekAccessToken(raw)
			require.True(t, ok)
			require.Equal(t, now.Add(tc.expiresIn).Unix(), c.ExpiresAt.Unix())
			require.Equal(t, tc.wantExpired, c.Expired())
			require.Equal(t, tc.wantAboutToGo, c.AboutToExpire())
		})
	}
}

func TestPeekAccessTokenMalformed(t *testing.T) {
	_, ok := claims.PeekAccessToken("")
	require.False(t, ok)

	_, ok = claims.PeekAccessToken("not-a-token")
	require.False(t, ok)

	_, ok = claims.PeekAccessToken("only.two")
	require.False(t, ok)

	_, ok = claims.PeekAccessToken("a.!!!not-base64!!!.c")
	require.False(t, ok)

	// Structurally fine but no exp claim
	raw := encodeToken(t, map[string]any{"scope": "openid"})
	_, ok = claims.PeekAccessToken(raw)
	require.False(t, ok)
}

func TestPeekAccessTokenScopes(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	raw := encodeToken(t, map[string]any{"exp": exp, "scope": "openid profile owner:albums"})
	c, ok := claims.PeekAccessToken(raw)
	require.True(t, ok)
	require.Equal(t, []string{"openid", "profile", "owner:albums"}, c.Scopes)
	require.True(t, c.IsOwner())

	raw = encodeToken(t, map[string]any{"exp": exp, "scope": []string{"openid", "email"}})
	c, ok = claims.PeekAccessToken(raw)
	require.True(t, ok)
	require.Equal(t, []string{"openid", "email"}, c.Scopes)
	require.False(t, c.IsOwner())

	// owner must be a prefix, not a substring
	raw = encodeToken(t, map[string]any{"exp": exp, "scope": "albums:owner"})
	c, ok = claims.PeekAccessToken(raw)
	require.True(t, ok)
	require.False(t, c.IsOwner())
}

func TestPeekIdentity(t *testing.T) {
	raw := encodeToken(t, map[string]any{
		"given_name":  "Jane",
		"family_name": "Doe",
		"email":       "jane@example.com",
		"picture":     "https://example.com/jane.png",
	})
	id, ok := claims.PeekIdentity(raw)
	require.True(t, ok)
	require.Equal(t, "Jane Doe", id.Name)
	require.Equal(t, "jane@example.com", id.Email)
	require.Equal(t, "https://example.com/jane.png", id.Picture)
}

func TestPeekIdentityNameFallbacks(t *testing.T) {
	raw := encodeToken(t, map[string]any{"name": "Jane D.", "email": "jane@example.com"})
	id, ok := claims.PeekIdentity(raw)
	require.True(t, ok)
	require.Equal(t, "Jane D.", id.Name)

	raw = encodeToken(t, map[string]any{"preferred_username": "jane.doe"})
	id, ok = claims.PeekIdentity(raw)
	require.True(t, ok)
	require.Equal(t, "jane.doe", id.Name)

	raw = encodeToken(t, map[string]any{"email": "jane@example.com"})
	id, ok = claims.PeekIdentity(raw)
	require.True(t, ok)
	require.Equal(t, "jane@example.com", id.Name)

	_, ok = claims.PeekIdentity("garbage")
	require.False(t, ok)
}
