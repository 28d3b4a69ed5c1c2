// Package httpserver builds the API server with the timeouts the telemetry
// workload needs.
package httpserver

import (
	"net/http"
	"time"
)

const (
	// Edge devices post tiny JSON bodies over flaky links; reads stay short.
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	// WriteTimeout must outlast the router's per-request timeout so a slow
	// snapshot fan-out fails with a handler error, not a dropped connection.
	writeTimeout = 45 * time.Second
	idleTimeout  = 60 * time.Second
)

// New returns an http.Server bound to addr, serving handler.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
