// Package server implements the short-lived loopback HTTP server used during
// Spotify authorization.
//
// # OAuth Callback Handler
//
// [OAuthHandler] serves the OAuth2 authorization-code callback. It verifies
// the state parameter against the value generated when the browser was
// opened, redeems the code through a [CodeExchanger], and delivers exactly
// one [OAuthResult] on its result channel. The handler is single-use;
// repeated callbacks are rejected so a replayed redirect cannot restart the
// exchange.
//
// # Router Infrastructure
//
// [BasicRouter] is a small [Router] over [http.ServeMux] with middleware
// support. [Middleware] wraps handlers in reverse registration order, so the
// first middleware added is the outermost. Handlers implementing [Handler]
// report their own routes and are registered in one call.
//
// The server exists only for the duration of an authorization flow: the auth
// command starts it on the configured loopback address, waits for the
// callback result, and shuts it down.
package server
