// Package server holds the HTTP server configuration.
//
// The serve command builds the Fiber application from it: the listen address,
// the API key enforced by the auth middleware and the graceful shutdown
// window.
package server
