package clock

import (
	"context"
	"testing"
	"time"

	"github.com/park285/cheese-arena/internal/domain"
)

type recorder struct {
	progress    []Snapshot
	timeExp     []domain.Player
	moveTimeExp []domain.Player
}

func (r *recorder) listener() Listener {
	return Listener{
		OnProgress:        func(s Snapshot) { r.progress = append(r.progress, s) },
		OnTimeExpired:     func(p domain.Player) { r.timeExp = append(r.timeExp, p) },
		OnMoveTimeExpired: func(p domain.Player) { r.moveTimeExp = append(r.moveTimeExp, p) },
	}
}

func TestInitializeResetsBudgets(t *testing.T) {
	c := New(nil)
	rec := &recorder{}
	c.Subscribe(rec.listener())
	c.Initialize(5*time.Minute, 2*time.Minute, time.Second)

	s := c.Snapshot()
	if s.State != Idle || s.Current != domain.White {
		t.Fatalf("unexpected state after init: %+v", s)
	}
	if s.White != 5*time.Minute || s.Black != 5*time.Minute || s.Move != 2*time.Minute || s.Elapsed != 0 {
		t.Fatalf("unexpected budgets: %+v", s)
	}
	if len(rec.progress) != 1 {
		t.Fatalf("expected one progress notification, got %d", len(rec.progress))
	}
}

func TestTickIgnoredUnlessRunning(t *testing.T) {
	c := New(nil)
	c.Initialize(time.Minute, 30*time.Second, 0)
	c.Tick(time.Second)
	if s := c.Snapshot(); s.White != time.Minute || s.Elapsed != 0 {
		t.Fatalf("idle clock moved: %+v", s)
	}
	c.Start()
	c.Tick(0)
	c.Tick(-time.Second)
	if s := c.Snapshot(); s.White != time.Minute {
		t.Fatalf("non-positive tick moved clock: %+v", s)
	}
}

func TestTickDecrementsCurrentPlayerOnly(t *testing.T) {
	c := New(nil)
	c.Initialize(time.Minute, 30*time.Second, 0)
	c.Start()
	c.Tick(2 * time.Second)
	s := c.Snapshot()
	if s.White != 58*time.Second || s.Black != time.Minute || s.Move != 28*time.Second || s.Elapsed != 2*time.Second {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestTotalTimeStrictlyDecreases(t *testing.T) {
	c := New(nil)
	c.Initialize(time.Minute, 30*time.Second, 0)
	c.Start()
	prev := c.Snapshot()
	for i := 0; i < 20; i++ {
		c.Tick(500 * time.Millisecond)
		if i%3 == 2 {
			c.SwitchPlayer()
		}
		cur := c.Snapshot()
		if cur.White+cur.Black >= prev.White+prev.Black {
			t.Fatalf("total did not decrease at step %d: %v -> %v", i, prev.White+prev.Black, cur.White+cur.Black)
		}
		prev = cur
	}
}

func TestSwitchPlayerAppliesIncrementToMover(t *testing.T) {
	c := New(nil)
	c.Initialize(time.Minute, 30*time.Second, time.Second)
	c.Start()
	c.Tick(5 * time.Second)
	if !c.SwitchPlayer() {
		t.Fatalf("switch rejected while running")
	}
	s := c.Snapshot()
	if s.White != 56*time.Second {
		t.Fatalf("increment not applied to white: %v", s.White)
	}
	if s.Black != time.Minute {
		t.Fatalf("black changed: %v", s.Black)
	}
	if s.Current != domain.Black || s.Move != 30*time.Second {
		t.Fatalf("switch did not flip/re-arm: %+v", s)
	}
}

func TestSwitchPlayerNoopWhenNotRunning(t *testing.T) {
	c := New(nil)
	c.Initialize(time.Minute, 30*time.Second, time.Second)
	if c.SwitchPlayer() {
		t.Fatalf("switch accepted while idle")
	}
	if s := c.Snapshot(); s.Current != domain.White || s.White != time.Minute {
		t.Fatalf("idle switch mutated clock: %+v", s)
	}
}

func TestMoveTimeExpiresBeforeTotalTime(t *testing.T) {
	c := New(nil)
	rec := &recorder{}
	c.Subscribe(rec.listener())
	c.Initialize(time.Minute, 30*time.Second, 0)
	c.Start()
	for i := 0; i < 60; i++ {
		c.Tick(time.Second)
	}
	if len(rec.moveTimeExp) != 1 || rec.moveTimeExp[0] != domain.White {
		t.Fatalf("expected single white move-time expiry, got %v", rec.moveTimeExp)
	}
	if len(rec.timeExp) != 0 {
		t.Fatalf("total-time expiry fired: %v", rec.timeExp)
	}
	s := c.Snapshot()
	if s.State != Expired || s.Expiry != MoveTime || s.Move != 0 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if s.White != 31*time.Second {
		t.Fatalf("white budget should stop at expiry tick, got %v", s.White)
	}
}

func TestSingleTickFiresAtMostOneExpiry(t *testing.T) {
	c := New(nil)
	rec := &recorder{}
	c.Subscribe(rec.listener())
	c.Initialize(10*time.Second, 10*time.Second, 0)
	c.Start()
	c.Tick(15 * time.Second)
	if len(rec.moveTimeExp)+len(rec.timeExp) != 1 {
		t.Fatalf("expected exactly one expiry, got move=%v total=%v", rec.moveTimeExp, rec.timeExp)
	}
	if len(rec.moveTimeExp) != 1 {
		t.Fatalf("move-time must win ties")
	}
}

func TestTotalTimeExpiry(t *testing.T) {
	c := New(nil)
	rec := &recorder{}
	c.Subscribe(rec.listener())
	c.Initialize(10*time.Second, 30*time.Second, 0)
	c.Start()
	c.SwitchPlayer()
	c.Tick(11 * time.Second)
	if len(rec.timeExp) != 1 || rec.timeExp[0] != domain.Black {
		t.Fatalf("expected black total-time expiry, got %v", rec.timeExp)
	}
	s := c.Snapshot()
	if s.Black != 0 || s.State != Expired || s.Expiry != TotalTime {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	c.Tick(time.Second)
	if len(rec.timeExp) != 1 {
		t.Fatalf("expired clock fired again")
	}
}

func TestStartAfterExpiryRearms(t *testing.T) {
	c := New(nil)
	c.Initialize(time.Minute, 5*time.Second, 0)
	c.Start()
	c.Tick(6 * time.Second)
	if c.State() != Expired {
		t.Fatalf("expected expired")
	}
	if !c.Start() {
		t.Fatalf("restart rejected")
	}
	if s := c.Snapshot(); s.Move != 5*time.Second || s.State != Running {
		t.Fatalf("restart did not re-arm: %+v", s)
	}
}

func TestStopKeepsRemaining(t *testing.T) {
	c := New(nil)
	c.Initialize(time.Minute, 30*time.Second, 0)
	c.Start()
	c.Tick(3 * time.Second)
	if !c.Stop() {
		t.Fatalf("stop rejected")
	}
	if c.Stop() {
		t.Fatalf("second stop accepted")
	}
	if s := c.Snapshot(); s.White != 57*time.Second || s.State != Idle {
		t.Fatalf("stop altered budgets: %+v", s)
	}
}

func TestUnsubscribeIsDeterministic(t *testing.T) {
	c := New(nil)
	rec := &recorder{}
	unsub := c.Subscribe(rec.listener())
	c.Initialize(time.Minute, 30*time.Second, 0)
	unsub()
	unsub()
	if c.ListenerCount() != 0 {
		t.Fatalf("listener still registered")
	}
	c.Start()
	c.Tick(time.Second)
	if len(rec.progress) != 1 {
		t.Fatalf("listener received events after unsubscribe: %d", len(rec.progress))
	}
}

func TestListenerMayCallBackIntoClock(t *testing.T) {
	c := New(nil)
	c.Subscribe(Listener{OnMoveTimeExpired: func(domain.Player) { c.Stop() }})
	c.Initialize(time.Minute, time.Second, 0)
	c.Start()
	done := make(chan struct{})
	go func() {
		c.Tick(2 * time.Second)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("listener re-entry deadlocked")
	}
}

func TestRunnerDrivesTicks(t *testing.T) {
	c := New(nil)
	c.Initialize(time.Minute, 30*time.Second, 0)
	c.Start()
	r := NewRunner(c, 5*time.Millisecond)
	r.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for c.Snapshot().Elapsed == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()
	r.Stop()
	if c.Snapshot().Elapsed == 0 {
		t.Fatalf("runner never ticked")
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[time.Duration]string{
		-time.Second:                  "00",
		45 * time.Second:              "45",
		90 * time.Second:              "01:30",
		time.Hour + 2*time.Minute + 3: "01:02:00",
		2*time.Hour + 5*time.Second:   "02:00:05",
	}
	for in, want := range cases {
		if got := FormatTime(in); got != want {
			t.Fatalf("FormatTime(%v)=%q want %q", in, got, want)
		}
	}
}
