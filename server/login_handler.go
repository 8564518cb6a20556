package server

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/albumgate/albumgate/server/flowstate"
)

// LoginHandler initiates the authorization flow: it seeds fresh single-use
// flow state (state, nonce, PKCE verifier, post-login destination) and
// redirects the browser to the identity provider's authorization endpoint.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bundle, err := s.oidc.Get(r.Context())
		if err != nil {
			log.Err(err).Msg("identity provider discovery failed")
			http.Error(w, "Identity provider unavailable", http.StatusInternalServerError)
			return
		}

		flow := flowstate.AuthFlowState{
			State:              generateRandomString(32),
			Nonce:              generateRandomString(32),
			CodeVerifier:       oauth2.GenerateVerifier(),
			RedirectAfterLogin: sanitizeRedirect(r.URL.Query().Get("redirect")),
		}

		if err := s.flows.Write(w, r, flow); err != nil {
			log.Err(err).Msg("failed to store auth flow state")
			http.Error(w, "Failed to start login", http.StatusInternalServerError)
			return
		}

		authURL := bundle.OAuth2Config.AuthCodeURL(
			flow.State,
			oauth2.S256ChallengeOption(flow.CodeVerifier),
			oidc.Nonce(flow.Nonce),
		)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}
