package server

import (
	"net"
	"net/http"
	"testing"

	"github.com/gofrs/uuid/v5"
)

func serve(t *testing.T, handler http.Handler) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := New(handler)
	go srv.Serve(listener)
	t.Cleanup(func() { srv.Close() })
	return "http://" + listener.Addr().String()
}

func TestRequestID(t *testing.T) {
	seen := make(chan string, 1)
	url := serve(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get(RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))

	resp, err := http.Get(url + "/anything")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	id := resp.Header.Get(RequestIDHeader)
	if _, err := uuid.FromString(id); err != nil {
		t.Fatalf("request ID %q is not a UUID: %v", id, err)
	}
	if got := <-seen; got != id {
		t.Fatalf("handler saw %q, response carried %q", got, id)
	}
}

func TestRequestID_Echoed(t *testing.T) {
	url := serve(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected echoed request ID, got %q", got)
	}
}
