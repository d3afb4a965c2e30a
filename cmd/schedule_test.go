package cmd

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matheuskafuri/newsdesk/internal/logger"
)

func TestSchedulerSkipsOverlappingTicks(t *testing.T) {
	c := newScheduler(time.UTC, logger.Discard())

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	id, err := c.AddFunc("@every 1h", func() {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
	})
	if err != nil {
		t.Fatalf("AddFunc: %v", err)
	}
	job := c.Entry(id).WrappedJob

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		job.Run()
	}()
	<-started

	// The first run is blocked, so this tick must return without running.
	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second tick blocked instead of being skipped")
	}

	close(release)
	wg.Wait()
	if got := calls.Load(); got != 1 {
		t.Errorf("job ran %d times, want 1", got)
	}
}

func TestSchedulerUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	c := newScheduler(loc, logger.Discard())
	if c.Location() != loc {
		t.Errorf("Location() = %v, want %v", c.Location(), loc)
	}
}
