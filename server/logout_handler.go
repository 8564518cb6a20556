package server

import "net/http"

// LogoutHandler clears the session and any residual flow state. Logging out
// an already-anonymous caller is a no-op success.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.sessions.Clear(w, r)
		s.flows.Clear(w, r)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
