package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/albumgate/albumgate/internal/errors"
	"github.com/albumgate/albumgate/server/flowstate"
	"github.com/albumgate/albumgate/server/session"
)

// CallbackHandler completes the authorization flow. The stored flow state is
// single-use: it is cleared before the code exchange, on success and failure
// alike, so replaying the same callback URL can never mint a second session.
// The session is only written after the full provider response has been
// validated; a failed exchange leaves it untouched.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse form to support both GET (query params) and POST (form_post response mode)
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		// The provider returned an error instead of a code. No exchange.
		if errorParam != "" {
			denied := &errors.ProviderDeniedError{Code: errorParam, Description: errorDesc}
			log.Warn().Str("code", denied.Code).Str("description", denied.Description).Msg("provider denied authorization")
			s.flows.Clear(w, r)
			s.redirectError(w, r, reasonProviderDenied, denied.UserMessage())
			return
		}

		flow, err := s.flows.Get(r)
		if err != nil {
			log.Warn().Err(err).Msg("callback without flow state")
			s.flows.Clear(w, r)
			s.redirectError(w, r, reasonMissingFlowState, "")
			return
		}

		// Consume the flow state before touching the token endpoint.
		s.flows.Clear(w, r)

		if code == "" || state != flow.State {
			log.Warn().Err(errors.ErrStateMismatch).Msg("callback state mismatch")
			s.redirectError(w, r, reasonStateMismatch, "")
			return
		}

		sess, accessTokenTTL, err := s.exchangeCode(r.Context(), flow, code)
		if err != nil {
			log.Err(err).Msg("authorization code exchange failed")
			s.redirectError(w, r, reasonTokenExchangeFailed, "")
			return
		}

		if err := s.sessions.Write(w, r, sess, accessTokenTTL); err != nil {
			log.Err(err).Msg("failed to write session")
			s.redirectError(w, r, reasonTokenExchangeFailed, "")
			return
		}

		http.Redirect(w, r, flow.RedirectAfterLogin, http.StatusSeeOther)
	}
}

// exchangeCode trades the authorization code for tokens and validates the
// returned ID token, including the nonce binding against the stored flow
// state.
func (s *Server) exchangeCode(ctx context.Context, flow flowstate.AuthFlowState, code string) (session.Session, time.Duration, error) {
	bundle, err := s.oidc.Get(ctx)
	if err != nil {
		return session.Session{}, 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.GetProviderTimeout())
	defer cancel()

	oauth2Token, err := bundle.OAuth2Config.Exchange(ctx, code, oauth2.VerifierOption(flow.CodeVerifier))
	if err != nil {
		return session.Session{}, 0, errors.Wrapf(errors.ErrTokenExchangeFailed, "exchange rejected (%v)", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return session.Session{}, 0, errors.Wrapf(errors.ErrTokenExchangeFailed, "no ID token in response")
	}

	// Verify the ID token signature and claims, then bind it to this login
	// attempt via the nonce.
	idToken, err := bundle.Verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return session.Session{}, 0, errors.Wrapf(errors.ErrTokenExchangeFailed, "ID token verification failed (%v)", err)
	}
	if idToken.Nonce != flow.Nonce {
		return session.Session{}, 0, errors.Wrapf(errors.ErrNonceMismatch, "ID token nonce does not match login attempt")
	}

	ttl := time.Duration(0)
	if !oauth2Token.Expiry.IsZero() {
		ttl = time.Until(oauth2Token.Expiry)
	}

	return session.Session{
		AccessToken:   oauth2Token.AccessToken,
		RefreshToken:  oauth2Token.RefreshToken,
		IdentityToken: rawIDToken,
	}, ttl, nil
}
