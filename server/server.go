// Package server implements the OIDC session lifecycle for the album
// application: login initiation, the authorization-code callback, proactive
// token refresh and logout, all carried in browser cookies.
package server

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/albumgate/albumgate/internal/config"
	"github.com/albumgate/albumgate/oidcprovider"
	"github.com/albumgate/albumgate/server/flowstate"
	"github.com/albumgate/albumgate/server/session"
	"github.com/albumgate/albumgate/token"
)

// TokenRefresher decides whether the access token is usable and refreshes it
// when necessary.
type TokenRefresher interface {
	EnsureFresh(ctx context.Context, sess session.Session) (token.Result, error)
}

type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	oidc      *oidcprovider.Cache
	sessions  session.Store
	flows     flowstate.Store
	refresher TokenRefresher
}

// Option modifies the Server during construction, mainly for tests.
type Option func(*Server)

// WithSessionStore replaces the cookie-backed session store.
func WithSessionStore(store session.Store) Option {
	return func(s *Server) { s.sessions = store }
}

// WithFlowStateStore replaces the cookie-backed flow state store.
func WithFlowStateStore(store flowstate.Store) Option {
	return func(s *Server) { s.flows = store }
}

// WithTokenRefresher replaces the default refresher.
func WithTokenRefresher(refresher TokenRefresher) Option {
	return func(s *Server) { s.refresher = refresher }
}

// New creates the session-lifecycle server. Missing identity-provider
// settings are a fatal configuration error; the discovery document itself is
// fetched lazily on first use and cached for the process lifetime.
func New(cfg config.Config, options ...Option) (*Server, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	s := &Server{
		env:    cfg.GetEnv(),
		mux:    http.NewServeMux(),
		config: cfg,
		oidc: oidcprovider.NewCache(
			cfg.GetIssuerURL(),
			cfg.GetClientID(),
			cfg.GetClientSecret(),
			cfg.GetBaseURL()+RouteCallback,
			cfg.GetScopes(),
		),
		sessions: session.NewCookieStore(cfg.GetRefreshTokenMaxAge(), cfg.GetIdentityClaimsMaxAge(), isSecureRequest),
		flows:    flowstate.NewCookieStore(cfg.GetFlowStateTimeout(), isSecureRequest),
	}

	s.refresher = token.NewRefresher(s.oauth2Config, cfg.GetRefreshLookahead(), cfg.GetProviderTimeout())

	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteLogin, s.LoginHandler())
	s.RegisterRouteFunc("GET "+RouteCallback, s.CallbackHandler())
	s.RegisterRouteFunc("POST "+RouteCallback, s.CallbackHandler()) // For form_post response mode
	s.RegisterRouteFunc("GET "+RouteLogout, s.LogoutHandler())
	s.RegisterRouteFunc("GET "+RouteError, s.ErrorPageHandler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("registered route")
	}
}
