package router

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"promotions/apierrors"
	phttp "promotions/http"
)

// Handler serves the bindings over net/http. chi resolves the request path to
// its template and path parameters, and everything else goes to Dispatch,
// including unknown paths and unbound methods.
func (r *Router) Handler() http.Handler {
	mux := chi.NewRouter()
	for rt := range r.bindings {
		mux.MethodFunc(rt.method, rt.resource, r.serveHTTP)
	}
	mux.NotFound(r.serveHTTP)
	mux.MethodNotAllowed(r.serveHTTP)
	return mux
}

func (r *Router) serveHTTP(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		r.logger.Error("Reading body", "err", err)
		phttp.WriteResponse(w, phttp.ErrorResponse(apierrors.BadRequest(err.Error())))
		return
	}

	event, err := eventFromRequest(req, body)
	if err != nil {
		phttp.WriteResponse(w, phttp.ErrorResponse(apierrors.BadRequest(err.Error())))
		return
	}
	phttp.WriteResponse(w, r.Dispatch(req.Context(), event))
}

func eventFromRequest(req *http.Request, body []byte) (Event, error) {
	event := Event{
		HTTPMethod:            req.Method,
		Path:                  req.URL.Path,
		Headers:               make(map[string]string, len(req.Header)),
		QueryStringParameters: make(map[string]string),
		PathParameters:        make(map[string]string),
		Body:                  string(body),
	}
	for name, values := range req.Header {
		event.Headers[name] = strings.Join(values, ",")
	}
	for name, values := range req.URL.Query() {
		if len(values) > 0 {
			event.QueryStringParameters[name] = values[0]
		}
	}

	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		event.Resource = rctx.RoutePattern()
		for i, key := range rctx.URLParams.Keys {
			if key == "*" || i >= len(rctx.URLParams.Values) {
				continue
			}
			value := rctx.URLParams.Values[i]
			// chi matches on RawPath when there is one, leaving values escaped.
			if req.URL.RawPath != "" {
				unescaped, err := url.PathUnescape(value)
				if err != nil {
					return Event{}, fmt.Errorf("path parameter %s: %w", key, err)
				}
				value = unescaped
			}
			event.PathParameters[key] = value
		}
	}
	return event, nil
}
