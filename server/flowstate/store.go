// Package flowstate persists the short-lived, single-use parameters of an
// in-flight login attempt between the authorize redirect and the callback.
package flowstate

import "net/http"

// AuthFlowState holds the anti-CSRF/anti-replay parameters of one login
// attempt. It is created by the flow initiator, consumed exactly once by the
// callback handler, and cleared regardless of outcome.
type AuthFlowState struct {
	State              string
	Nonce              string
	CodeVerifier       string
	RedirectAfterLogin string
}

type Store interface {
	Write(w http.ResponseWriter, r *http.Request, state AuthFlowState) error
	Get(r *http.Request) (AuthFlowState, error)
	Clear(w http.ResponseWriter, r *http.Request)
}
