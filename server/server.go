package server

import (
	"net/http"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const RequestIDHeader = "X-Request-Id"

// New returns a server that accepts HTTP/1.1 and cleartext HTTP/2 and tags
// every response with a request ID.
func New(handler http.Handler) *http.Server {
	h2s := &http2.Server{}
	return &http.Server{
		Handler: h2c.NewHandler(WithRequestID(handler), h2s),
	}
}

// WithRequestID sets RequestIDHeader on the response. An ID supplied by the
// client is echoed back, otherwise a fresh UUID is used.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV4()).String()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
