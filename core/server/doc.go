// Package server holds the HTTP server configuration.
//
// The start command owns the Fiber application; this package only defines the settings
// it reads: listen port, API key and the per-request synchronization timeout.
package server
