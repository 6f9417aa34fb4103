package clock

import (
	"context"
	"testing"
	"time"
)

func TestFakeSleepAdvances(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	c := NewFake(start)

	if err := c.Sleep(context.Background(), 2*time.Second); err != nil {
		t.Fatalf("Sleep returned error: %v", err)
	}
	if got := c.Now().Sub(start); got != 2*time.Second {
		t.Errorf("clock advanced %v, want 2s", got)
	}
	if s := c.Sleeps(); len(s) != 1 || s[0] != 2*time.Second {
		t.Errorf("Sleeps() = %v", s)
	}
}

func TestFakeAfterFunc(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := 0
	c.AfterFunc(3*time.Second, func() { fired++ })
	stopped := c.AfterFunc(time.Second, func() { fired += 10 })
	stopped.Stop()

	c.Advance(2 * time.Second)
	if fired != 0 {
		t.Fatalf("timer fired early: %d", fired)
	}
	c.Advance(time.Second)
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestRealSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (Real{}).Sleep(ctx, time.Hour); err == nil {
		t.Error("expected context error")
	}
}
