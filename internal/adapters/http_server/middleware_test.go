package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func TestLogger_RecordsRoutePatternAndLevel(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(Logger(zerolog.New(&buf)))
	r.Get("/v1/wizards/{sid}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("fine")) })

	cases := []struct {
		path, route, level string
		status             int
	}{
		{"/v1/wizards/abc", "/v1/wizards/{sid}", "error", http.StatusBadGateway},
		{"/ok", "/ok", "info", http.StatusOK},
	}
	for _, tc := range cases {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		req.RemoteAddr = "10.0.0.7:5555"
		r.ServeHTTP(httptest.NewRecorder(), req)

		var line map[string]any
		if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
			t.Fatalf("%s: decode log line %q: %v", tc.path, buf.String(), err)
		}
		if line["route"] != tc.route || line["level"] != tc.level || line["status"] != float64(tc.status) {
			t.Fatalf("%s: unexpected log line: %v", tc.path, line)
		}
		if id, _ := line["request_id"].(string); line["remote"] != "10.0.0.7" || id == "" {
			t.Fatalf("%s: missing request fields: %v", tc.path, line)
		}
	}
}

func TestRouteOf_Unmatched(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	if got := routeOf(req); got != "unmatched" {
		t.Fatalf("routeOf without chi context = %q", got)
	}
}
