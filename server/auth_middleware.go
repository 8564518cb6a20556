package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/albumgate/albumgate/token"
)

// WithAuthentication is middleware that resolves the current authentication
// view for each request: it reads the session, refreshes the access token
// when it is absent, expired or about to expire, commits or clears the
// session accordingly, and injects the resulting view into the request
// context. Handlers behind it read the view via AuthenticationFromContext.
func (s *Server) WithAuthentication() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			view := Authentication{}

			sess := s.sessions.Get(r)
			result, err := s.refresher.EnsureFresh(r.Context(), sess)
			switch result.Status {
			case token.StatusActive:
				if result.Refreshed {
					if err := s.sessions.Write(w, r, result.Session, result.AccessTokenTTL); err != nil {
						log.Err(err).Msg("failed to commit refreshed session")
					}
				}
				view = s.resolveView(result.Session)
			case token.StatusExpired:
				// The refresh grant was rejected or lost. Clear everything and
				// downgrade to anonymous; the user must re-authenticate.
				log.Warn().Err(err).Msg("session expired, clearing")
				s.sessions.Clear(w, r)
			}

			ctx := context.WithValue(r.Context(), ContextKeyAuthentication, view)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAuthentication is middleware that redirects anonymous callers to
// the login flow, preserving the requested path as the post-login
// destination. It must be chained after WithAuthentication.
func (s *Server) RequireAuthentication() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !AuthenticationFromContext(r.Context()).LoggedIn {
				http.Redirect(w, r, RouteLogin+"?redirect="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}
			next(w, r)
		}
	}
}

// RequireOwner is middleware that rejects callers whose access token carries
// no owner-prefixed scope. It must be chained after WithAuthentication.
func (s *Server) RequireOwner() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			view := AuthenticationFromContext(r.Context())
			if !view.LoggedIn || !view.User.IsOwner {
				http.Error(w, "Owner access required", http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}
