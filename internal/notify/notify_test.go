package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/park285/cheese-arena/internal/domain"
	"github.com/park285/cheese-arena/internal/events"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func serve(t *testing.T, h fasthttp.RequestHandler) *fasthttputil.InmemoryListener {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, h) }()
	t.Cleanup(func() { _ = ln.Close() })
	return ln
}

func dialer(ln *fasthttputil.InmemoryListener) Option {
	return WithDial(func(string) (net.Conn, error) { return ln.Dial() })
}

func TestClientPostsJSON(t *testing.T) {
	var gotBody []byte
	var gotHeader string
	ln := serve(t, func(ctx *fasthttp.RequestCtx) {
		gotBody = append([]byte(nil), ctx.PostBody()...)
		gotHeader = string(ctx.Request.Header.Peek("X-Arena-Token"))
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	})
	c := NewClient("http://hook.local/arena", dialer(ln), WithHeaderProvider(func() map[string]string {
		return map[string]string{"X-Arena-Token": "secret"}
	}))
	if err := c.Post(context.Background(), map[string]string{"hello": "world"}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if string(gotBody) != `{"hello":"world"}` || gotHeader != "secret" {
		t.Fatalf("unexpected request: body=%s header=%q", gotBody, gotHeader)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ln := serve(t, func(ctx *fasthttp.RequestCtx) {
		if calls.Add(1) < 3 {
			ctx.SetStatusCode(fasthttp.StatusBadGateway)
			return
		}
		ctx.SetStatusCode(fasthttp.StatusOK)
	})
	c := NewClient("http://hook.local/", dialer(ln), WithRetry(3))
	if err := c.Post(context.Background(), struct{}{}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	ln := serve(t, func(ctx *fasthttp.RequestCtx) {
		calls.Add(1)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString("bad payload")
	})
	c := NewClient("http://hook.local/", dialer(ln), WithRetry(3))
	if err := c.Post(context.Background(), struct{}{}); err == nil {
		t.Fatalf("expected error on 400")
	}
	if calls.Load() != 1 {
		t.Fatalf("400 should not be retried, got %d attempts", calls.Load())
	}
}

type recordingPoster struct {
	mu   sync.Mutex
	got  []Payload
	fail bool
	ch   chan struct{}
}

func (r *recordingPoster) Post(_ context.Context, in any) error {
	r.mu.Lock()
	r.got = append(r.got, in.(Payload))
	r.mu.Unlock()
	r.ch <- struct{}{}
	if r.fail {
		return errors.New("unreachable")
	}
	return nil
}

func TestNotifierForwardsSelectedKinds(t *testing.T) {
	p := &recordingPoster{ch: make(chan struct{}, 8)}
	n := NewNotifier(p, func(e events.Event) (string, bool) {
		if e.Kind == events.MatchEnded {
			return "fim de partida", true
		}
		return "", false
	}, nil)
	bus := events.NewBus()
	bus.Subscribe(n.Handle)

	bus.Publish(events.Event{Kind: events.ClockChanged, MatchID: "m"})
	bus.Publish(events.Event{Kind: events.MatchEnded, MatchID: "m", Result: &domain.MatchResult{MatchID: "m", Outcome: domain.Win}})
	bus.Publish(events.Event{Kind: events.RatingChanged, Rating: &domain.RatingRecord{Rating: 1216}})

	for i := 0; i < 2; i++ {
		select {
		case <-p.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("payload %d not delivered", i)
		}
	}
	n.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.got) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(p.got))
	}
	if p.got[0].Kind != events.MatchEnded || p.got[0].Text != "fim de partida" || p.got[0].Result.Outcome != domain.Win {
		t.Fatalf("unexpected first payload: %+v", p.got[0])
	}
	if p.got[1].Kind != events.RatingChanged || p.got[1].Rating.Rating != 1216 || p.got[1].Text != "" {
		t.Fatalf("unexpected second payload: %+v", p.got[1])
	}
	raw, err := json.Marshal(p.got[0])
	if err != nil || len(raw) == 0 {
		t.Fatalf("payload not serializable: %v", err)
	}
}

func TestNotifierSurvivesPostFailure(t *testing.T) {
	p := &recordingPoster{ch: make(chan struct{}, 8), fail: true}
	n := NewNotifier(p, nil, nil, events.OpponentFound)
	n.Handle(events.Event{Kind: events.OpponentFound})
	n.Handle(events.Event{Kind: events.OpponentFound})
	n.Close()
	if len(p.got) != 2 {
		t.Fatalf("expected both payloads attempted, got %d", len(p.got))
	}
	n.Handle(events.Event{Kind: events.OpponentFound})
}
