package server_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oauth2-proxy/mockoidc"
	"github.com/stretchr/testify/require"

	"github.com/albumgate/albumgate/internal/config"
	"github.com/albumgate/albumgate/server"
)

// testConfig overrides the environment-derived identity-provider settings.
type testConfig struct {
	config.Config
	issuerURL    string
	clientID     string
	clientSecret string
	baseURL      string
}

func (c testConfig) GetIssuerURL() string    { return c.issuerURL }
func (c testConfig) GetClientID() string     { return c.clientID }
func (c testConfig) GetClientSecret() string { return c.clientSecret }
func (c testConfig) GetBaseURL() string      { return c.baseURL }
func (c testConfig) GetEnv() string          { return "TEST" }

func newTestConfig(issuerURL string) testConfig {
	return testConfig{
		Config:       config.New(),
		issuerURL:    issuerURL,
		clientID:     "album-client",
		clientSecret: "s3cret",
		baseURL:      "http://app.localtest",
	}
}

func newTestServer(t *testing.T, issuerURL string, options ...server.Option) *server.Server {
	t.Helper()
	s, err := server.New(newTestConfig(issuerURL), options...)
	require.NoError(t, err)
	return s
}

// makeJWT builds an unsigned JWT, enough for the untrusted claims peek.
func makeJWT(t *testing.T, payload map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]any{"alg": "RS256", "typ": "JWT"})
	require.NoError(t, err)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(body) + "." + enc.EncodeToString([]byte("sig"))
}

func addFlowCookies(r *http.Request, state, nonce, verifier string) {
	r.AddCookie(&http.Cookie{Name: "oauth-state", Value: state})
	r.AddCookie(&http.Cookie{Name: "oauth-nonce", Value: nonce})
	r.AddCookie(&http.Cookie{Name: "oauth-code-verifier", Value: verifier})
}

func redirectTarget(t *testing.T, w *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, w.Code)
	target, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return target
}

// idpCounter is a stand-in issuer that records whether it was contacted at
// all. The callback failure paths must never reach the provider.
func idpCounter(t *testing.T) (string, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unexpected provider call", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return srv.URL, &hits
}

func TestCallbackStateMismatch(t *testing.T) {
	issuer, hits := idpCounter(t)
	s := newTestServer(t, issuer)

	r := httptest.NewRequest(http.MethodGet, server.RouteCallback+"?code=the-code&state=evil-state", nil)
	addFlowCookies(r, "good-state", "nonce-1", "verifier-1")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	target := redirectTarget(t, w)
	require.Equal(t, server.RouteError, target.Path)
	require.Equal(t, "state_mismatch", target.Query().Get("reason"))
	require.Zero(t, hits.Load(), "the token endpoint must not be called on a state mismatch")
}

func TestCallbackMissingCode(t *testing.T) {
	issuer, hits := idpCounter(t)
	s := newTestServer(t, issuer)

	r := httptest.NewRequest(http.MethodGet, server.RouteCallback+"?state=good-state", nil)
	addFlowCookies(r, "good-state", "nonce-1", "verifier-1")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	target := redirectTarget(t, w)
	require.Equal(t, "state_mismatch", target.Query().Get("reason"))
	require.Zero(t, hits.Load())
}

func TestCallbackMissingFlowState(t *testing.T) {
	issuer, hits := idpCounter(t)
	s := newTestServer(t, issuer)

	r := httptest.NewRequest(http.MethodGet, server.RouteCallback+"?code=the-code&state=good-state", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	target := redirectTarget(t, w)
	require.Equal(t, "missing_flow_state", target.Query().Get("reason"))
	require.Zero(t, hits.Load())
}

func TestCallbackProviderDenied(t *testing.T) {
	issuer, hits := idpCounter(t)
	s := newTestServer(t, issuer)

	r := httptest.NewRequest(http.MethodGet, server.RouteCallback+"?error=access_denied&error_description=User+cancelled", nil)
	addFlowCookies(r, "good-state", "nonce-1", "verifier-1")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	target := redirectTarget(t, w)
	require.Equal(t, "provider_denied", target.Query().Get("reason"))
	require.Equal(t, "Sign-in was cancelled or denied.", target.Query().Get("message"))
	require.Zero(t, hits.Load())

	// Flow state is consumed on the failure path too.
	for _, c := range w.Result().Cookies() {
		require.Negative(t, c.MaxAge, "cookie %s should be cleared", c.Name)
	}
}

func TestLoginHandler(t *testing.T) {
	m, err := mockoidc.Run()
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown() })

	s := newTestServer(t, m.Issuer())

	r := httptest.NewRequest(http.MethodGet, server.RouteLogin+"?redirect=%2Falbums%2F2024", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	require.Equal(t, http.StatusFound, w.Code)
	authURL, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.Contains(t, m.AuthorizationEndpoint(), authURL.Host)

	query := authURL.Query()
	require.Equal(t, "code", query.Get("response_type"))
	require.Equal(t, "album-client", query.Get("client_id"))
	require.Equal(t, "openid profile email", query.Get("scope"))
	require.NotEmpty(t, query.Get("state"))
	require.NotEmpty(t, query.Get("nonce"))
	require.NotEmpty(t, query.Get("code_challenge"))
	require.Equal(t, "S256", query.Get("code_challenge_method"))

	cookies := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c
		require.Equal(t, http.SameSiteLaxMode, c.SameSite)
		require.Equal(t, 600, c.MaxAge)
	}
	require.Equal(t, query.Get("state"), cookies["oauth-state"].Value)
	require.Equal(t, query.Get("nonce"), cookies["oauth-nonce"].Value)
	require.NotEmpty(t, cookies["oauth-code-verifier"].Value)
	require.Equal(t, "/albums/2024", cookies["oauth-redirect-after-login"].Value)
}

func TestLoginHandlerRejectsOffsiteRedirect(t *testing.T) {
	m, err := mockoidc.Run()
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown() })

	s := newTestServer(t, m.Issuer())

	for _, target := range []string{"https://evil.example.com/", "//evil.example.com/"} {
		r := httptest.NewRequest(http.MethodGet, server.RouteLogin+"?redirect="+url.QueryEscape(target), nil)
		w := httptest.NewRecorder()
		s.ServeHTTP(w, r)

		require.Equal(t, http.StatusFound, w.Code)
		for _, c := range w.Result().Cookies() {
			if c.Name == "oauth-redirect-after-login" {
				require.Equal(t, "/", c.Value)
			}
		}
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	issuer, _ := idpCounter(t)
	s := newTestServer(t, issuer)

	r := httptest.NewRequest(http.MethodGet, server.RouteLogout, nil)
	r.AddCookie(&http.Cookie{Name: "access-token", Value: makeJWT(t, map[string]any{"exp": time.Now().Add(time.Hour).Unix()})})
	r.AddCookie(&http.Cookie{Name: "refresh-token", Value: "refresh-1"})
	r.AddCookie(&http.Cookie{Name: "identity-claims", Value: "identity-1"})
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	target := redirectTarget(t, w)
	require.Equal(t, "/", target.Path)

	cleared := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		require.Negative(t, c.MaxAge)
		cleared[c.Name] = true
	}
	for _, name := range []string{"access-token", "refresh-token", "identity-claims", "oauth-state", "oauth-nonce", "oauth-code-verifier", "oauth-redirect-after-login"} {
		require.True(t, cleared[name], "cookie %s should be cleared", name)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	issuer, _ := idpCounter(t)
	s := newTestServer(t, issuer)

	// No session at all: still a successful redirect.
	r := httptest.NewRequest(http.MethodGet, server.RouteLogout, nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	require.Equal(t, http.StatusSeeOther, w.Code)
}

func TestErrorPage(t *testing.T) {
	issuer, _ := idpCounter(t)
	s := newTestServer(t, issuer)

	r := httptest.NewRequest(http.MethodGet, server.RouteError+"?reason=state_mismatch", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "expired or was tampered with")
	require.Contains(t, w.Body.String(), server.RouteLogin)
}
