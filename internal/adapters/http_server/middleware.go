package httpserver

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"reviewflow/internal/adapters/observability"
)

// Timeout bounds each request; a handler still running is answered with 503.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timeout")
	}
}

// routeOf is the matched chi pattern, so /v1/wizards/{sid}/draft is one label
// no matter how many sessions exist.
func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// served runs next and reports the response status and duration.
func served(next http.Handler, w http.ResponseWriter, r *http.Request) (int, time.Duration) {
	start := time.Now()
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	next.ServeHTTP(ww, r)
	status := ww.Status()
	if status == 0 {
		status = http.StatusOK
	}
	return status, time.Since(start)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, dur := served(next, w, r)
		observability.ObserveHTTP(routeOf(r), r.Method, status, dur)
	})
}

// Logger writes one line per request. Server errors are logged at error level.
// RealIP runs earlier in the chain, so RemoteAddr is already the client address.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status, dur := served(next, w, r)

			ev := l.Info()
			switch {
			case status >= 500:
				ev = l.Error()
			case status >= 400:
				ev = l.Warn()
			}
			ev.Str("request_id", chimw.GetReqID(r.Context())).
				Str("route", routeOf(r)).
				Str("method", r.Method).
				Int("status", status).
				Dur("duration", dur).
				Str("remote", clientHost(r.RemoteAddr)).
				Msg("http_request")
		})
	}
}

func clientHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
