package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arena"

// Metrics holds the arena collectors. Domain counters are fed from the
// event bus through Handle.
type Metrics struct {
	gatherer prometheus.Gatherer

	matchesStarted *prometheus.CounterVec
	matchesEnded   *prometheus.CounterVec
	matchDuration  *prometheus.HistogramVec
	matchMoves     prometheus.Histogram
	searches       *prometheus.CounterVec
	drawOffers     *prometheus.CounterVec
	rating         prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// New registers collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		matchesStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_started_total",
			Help:      "Matches started by mode",
		}, []string{"mode", "ranked"}),
		matchesEnded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_ended_total",
			Help:      "Matches ended by reason and local outcome",
		}, []string{"reason", "outcome"}),
		matchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Wall time from match start to end",
			Buckets:   prometheus.ExponentialBuckets(15, 2, 9),
		}, []string{"mode"}),
		matchMoves: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_moves",
			Help:      "Half-moves played per match",
			Buckets:   prometheus.LinearBuckets(10, 10, 12),
		}),
		searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Matchmaking searches by result",
		}, []string{"result"}),
		drawOffers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_offers_total",
			Help:      "Draw offer transitions",
		}, []string{"state"}),
		rating: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "player_rating",
			Help:      "Current rating of the local player",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests received",
		}, []string{"method", "route", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests",
		}),
	}
}

// Handle is an events.Handler.
func (m *Metrics) Handle(e events.Event) {
	switch e.Kind {
	case events.MatchStarted:
		if e.Mode != nil {
			m.matchesStarted.WithLabelValues(e.Mode.Name, strconv.FormatBool(e.Mode.Ranked)).Inc()
		}
	case events.MatchEnded:
		if e.Result == nil {
			return
		}
		m.matchesEnded.WithLabelValues(string(e.Result.Reason), string(e.Result.Outcome)).Inc()
		m.matchDuration.WithLabelValues(e.Result.Mode.Name).Observe(e.Result.Duration().Seconds())
		m.matchMoves.Observe(float64(len(e.Result.Moves)))
	case events.SearchStarted:
		m.searches.WithLabelValues("started").Inc()
	case events.SearchCancelled:
		m.searches.WithLabelValues("cancelled").Inc()
	case events.OpponentFound:
		m.searches.WithLabelValues("found").Inc()
	case events.DrawOfferChanged:
		state := "withdrawn"
		if e.Pending {
			state = "offered"
		}
		m.drawOffers.WithLabelValues(state).Inc()
	case events.RatingChanged:
		if e.Rating != nil {
			m.rating.Set(float64(e.Rating.Rating))
		}
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack keeps websocket upgrades working behind the middleware.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("arena metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics labelled by the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := strconv.Itoa(rec.status)
		m.httpRequests.WithLabelValues(r.Method, route, status).Inc()
		m.httpLatency.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
