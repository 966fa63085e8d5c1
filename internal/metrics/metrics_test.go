package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandleCountsDomainEvents(t *testing.T) {
	m := New(prometheus.NewRegistry())
	mode := domain.MatchMode{Name: "Blitz", Ranked: true}
	start := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

	m.Handle(events.Event{Kind: events.SearchStarted})
	m.Handle(events.Event{Kind: events.OpponentFound})
	m.Handle(events.Event{Kind: events.MatchStarted, Mode: &mode})
	m.Handle(events.Event{Kind: events.DrawOfferChanged, Pending: true})
	m.Handle(events.Event{Kind: events.DrawOfferChanged, Pending: false})
	m.Handle(events.Event{Kind: events.MatchEnded, Result: &domain.MatchResult{
		Reason: domain.ReasonResignation, Outcome: domain.Win, Mode: mode,
		StartedAt: start, EndedAt: start.Add(time.Minute),
	}})
	m.Handle(events.Event{Kind: events.RatingChanged, Rating: &domain.RatingRecord{Rating: 1216}})
	m.Handle(events.Event{Kind: events.MatchEnded})

	if v := testutil.ToFloat64(m.matchesStarted.WithLabelValues("Blitz", "true")); v != 1 {
		t.Fatalf("matches started = %v", v)
	}
	if v := testutil.ToFloat64(m.matchesEnded.WithLabelValues("resignation", "win")); v != 1 {
		t.Fatalf("matches ended = %v", v)
	}
	if v := testutil.ToFloat64(m.searches.WithLabelValues("found")); v != 1 {
		t.Fatalf("searches found = %v", v)
	}
	if v := testutil.ToFloat64(m.drawOffers.WithLabelValues("offered")); v != 1 {
		t.Fatalf("draw offers = %v", v)
	}
	if v := testutil.ToFloat64(m.rating); v != 1216 {
		t.Fatalf("rating gauge = %v", v)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New(nil)
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/modes/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/modes/Blitz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()

	if v := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/modes/{name}", "418")); v != 1 {
		t.Fatalf("http requests = %v", v)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "arena_http_requests_total") {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}
