// Package server provides the local HTTP listener used when authorization redirects are captured automatically
// rather than pasted by the operator.
//
// # Router Infrastructure
//
// [BasicRouter] registers method patterns on an [http.ServeMux], so requests with other methods are answered with
// 405 by the mux itself.
//
// [Middleware] is applied in the order it is added; the first added runs outermost. [RequestLogger] logs each request
// without its query string.
//
// # Callback Handler
//
// [CallbackHandler] records the first redirect it receives and rejects the rest. It neither checks state nor
// exchanges the code; both happen in the authenticator, the same way as for a pasted URL.
//
// # Callback Provider
//
// [CallbackProvider] satisfies the authenticator's code provider contract. For each account it listens on the
// REDIRECT_URI host and port, opens the authorization URL in the browser, waits for the redirect (two minutes by
// default) and shuts the listener down.
package server
