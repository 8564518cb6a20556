package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

func isSecureRequest(r *http.Request) bool {
	return getScheme(r) == "https"
}

// oauth2Config hands the cached provider configuration to the refresher.
func (s *Server) oauth2Config(ctx context.Context) (*oauth2.Config, error) {
	bundle, err := s.oidc.Get(ctx)
	if err != nil {
		return nil, err
	}
	return bundle.OAuth2Config, nil
}

// sanitizeRedirect only accepts local paths as a post-login destination, an
// absolute or protocol-relative URL would make the login endpoint an open
// redirect.
func sanitizeRedirect(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
		return "/"
	}
	return path
}

// redirectError sends the browser to the stable error page with a reason
// category and an optional user-facing message.
func (s *Server) redirectError(w http.ResponseWriter, r *http.Request, reason, message string) {
	target := RouteError + "?reason=" + url.QueryEscape(reason)
	if message != "" {
		target += "&message=" + url.QueryEscape(message)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
