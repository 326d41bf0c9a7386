package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with sane defaults for this project.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Write timeout stays generous: the AI path legitimately waits on
		// the external model for tens of seconds.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
