package schedule_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/derickschaefer/atmosense/internal/schedule"
)

func TestRunFiresRepeatedlyUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs int32

	done := make(chan error, 1)
	go func() {
		done <- schedule.New(20*time.Millisecond, nil).Run(ctx, func(context.Context) {
			if atomic.AddInt32(&runs, 1) == 3 {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("job did not run three times")
	}
	if n := atomic.LoadInt32(&runs); n < 3 {
		t.Errorf("runs: got %d want >= 3", n)
	}
}

func TestRunWaitsOneInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var runs int32
	if err := schedule.New(time.Hour, nil).Run(ctx, func(context.Context) {
		atomic.AddInt32(&runs, 1)
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := atomic.LoadInt32(&runs); n != 0 {
		t.Errorf("job ran %d times before the first interval", n)
	}
}

func TestRunRejectsZeroInterval(t *testing.T) {
	if err := schedule.New(0, nil).Run(context.Background(), func(context.Context) {}); err == nil {
		t.Error("expected an error for a zero interval")
	}
}
