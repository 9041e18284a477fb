// Package server serves the weather readings over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rubiojr/go-weatherpi/bme280"
	"github.com/rubiojr/go-weatherpi/weather"
)

const (
	msgNotFound    = "The requested resource was not found."
	msgServerError = "The server encountered an internal error while processing the request"
)

// ErrorMessage is the body of every error response.
type ErrorMessage struct {
	Message string `json:"message"`
}

type server struct {
	provider weather.Provider
}

// New returns the HTTP handler. g may be nil to disable /metrics.
func New(p weather.Provider, log zerolog.Logger, g prometheus.Gatherer) http.Handler {
	s := &server{provider: p}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.health)
	mux.HandleFunc("GET /api/weather", s.weather)
	if g != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/", s.notFound)

	var h http.Handler = mux
	h = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(h)
	h = hlog.RemoteAddrHandler("remote")(h)
	h = hlog.NewHandler(log)(h)
	return h
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *server) weather(w http.ResponseWriter, r *http.Request) {
	m, err := s.provider.Measure()
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("kind", bme280.Kind(err)).Msg("measurement failed")
		writeJSON(w, http.StatusInternalServerError, ErrorMessage{Message: msgServerError})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorMessage{Message: msgNotFound})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
