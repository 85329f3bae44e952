package httpapi

import (
	"net/http"
	"time"
)

func NewServer(addr string, h http.Handler, allowedOrigins []string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Wrap(h, allowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
