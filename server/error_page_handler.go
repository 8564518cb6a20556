package server

import (
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

var errorPageTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>Sign-in problem</title></head>
<body>
<h1>Sign-in problem</h1>
<p>{{.Message}}</p>
<p><a href="{{.LoginURL}}">Try signing in again</a></p>
</body>
</html>
`))

type errorPageData struct {
	Message  string
	LoginURL string
}

// ErrorPageHandler is the stable landing page for failed login attempts.
// Protocol failures are never retried automatically; the user decides.
func (s *Server) ErrorPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		message := r.URL.Query().Get("message")
		if message == "" {
			switch r.URL.Query().Get("reason") {
			case reasonStateMismatch, reasonMissingFlowState:
				message = "Your sign-in attempt expired or was tampered with. Please try again."
			case reasonTokenExchangeFailed:
				message = "We could not complete your sign-in with the identity provider. Please try again."
			default:
				message = "Sign-in failed. Please try again."
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := errorPageTmpl.Execute(w, errorPageData{Message: message, LoginURL: RouteLogin}); err != nil {
			log.Err(err).Msg("failed to render error page")
		}
	}
}
