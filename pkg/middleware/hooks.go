package middleware

import "net/http"

// RequestHook is a middleware-shaped extension point. Framework
// integrations register hooks so the whole chain is assembled in one
// place.
type RequestHook func(http.Handler) http.Handler

// Instrument wraps handler with the given hooks. The first hook becomes
// the outermost layer, matching the order they would be listed in a
// server's middleware stack.
func Instrument(handler http.Handler, hooks ...RequestHook) http.Handler {
	for i := len(hooks) - 1; i >= 0; i-- {
		handler = hooks[i](handler)
	}
	return handler
}
