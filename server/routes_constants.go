package server

// Route constants used by the session lifecycle handlers.
const (
	// RouteLogin starts the authorization flow against the identity provider.
	RouteLogin = "/auth/login"
	// RouteCallback is where the identity provider redirects back to.
	RouteCallback = "/auth/callback"
	// RouteLogout invalidates the session and any in-flight login attempt.
	RouteLogout = "/auth/logout"
	// RouteError is the stable landing page for failed login attempts.
	RouteError = "/auth/error"
)

// Error reason identifiers carried on the error page query string.
const (
	reasonProviderDenied      = "provider_denied"
	reasonStateMismatch       = "state_mismatch"
	reasonMissingFlowState    = "missing_flow_state"
	reasonTokenExchangeFailed = "token_exchange_failed"
)
