package runner_test

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/signalnine/seedbench/internal/runner"
)

func TestPool(t *testing.T) {
	var count atomic.Int32
	jobs := make([]runner.Job, 10)
	for i := range jobs {
		jobs[i] = func() error {
			count.Add(1)
			return nil
		}
	}
	errs := runner.RunPool(3, jobs)
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
	if count.Load() != 10 {
		t.Errorf("expected 10 jobs, got %d", count.Load())
	}
}

func TestPoolWithErrors(t *testing.T) {
	jobs := []runner.Job{
		func() error { time.Sleep(20 * time.Millisecond); return fmt.Errorf("first") },
		func() error { return nil },
		func() error { return fmt.Errorf("second") },
	}
	errs := runner.RunPool(3, jobs)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	if errs[0].Error() != "first" || errs[1].Error() != "second" {
		t.Errorf("errors out of job order: %v", errs)
	}
}

func TestPoolLimitsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	jobs := make([]runner.Job, 8)
	for i := range jobs {
		jobs[i] = func() error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		}
	}
	runner.RunPool(2, jobs)
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent jobs, saw %d", peak.Load())
	}
}
