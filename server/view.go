package server

import (
	"context"

	"github.com/albumgate/albumgate/claims"
	"github.com/albumgate/albumgate/server/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyAuthentication stores the per-request authentication view
const ContextKeyAuthentication ContextKey = "authentication"

// placeholderName is shown when identity claims are unreadable but the
// session is otherwise valid.
const placeholderName = "Member"

// User is the minimal identity exposed to the rest of the application.
type User struct {
	Name    string
	Email   string
	Picture string
	IsOwner bool
}

// Authentication is the per-request view over the session. It is rebuilt on
// every request and never persisted.
type Authentication struct {
	LoggedIn  bool
	User      User
	LogoutURL string
}

// AuthenticationFromContext returns the authentication view injected by
// WithAuthentication. An absent value reads as anonymous.
func AuthenticationFromContext(ctx context.Context) Authentication {
	view, ok := ctx.Value(ContextKeyAuthentication).(Authentication)
	if !ok {
		return Authentication{}
	}
	return view
}

// resolveView composes the access-token claims and the stored identity
// claims into the externally consumed view. Authorization (IsOwner) always
// derives from the access token; unreadable identity claims only degrade the
// display fields.
func (s *Server) resolveView(sess session.Session) Authentication {
	accessClaims, ok := claims.PeekAccessToken(sess.AccessToken)
	if !ok {
		return Authentication{}
	}

	user := User{
		Name:    placeholderName,
		IsOwner: accessClaims.IsOwner(),
	}
	if identity, ok := claims.PeekIdentity(sess.IdentityToken); ok {
		if identity.Name != "" {
			user.Name = identity.Name
		}
		user.Email = identity.Email
		user.Picture = identity.Picture
	}

	return Authentication{
		LoggedIn:  true,
		User:      user,
		LogoutURL: RouteLogout,
	}
}
