package wipe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"blockwipe/internal/logging"
)

// Fleet fans out one wipe worker per requested device and collects terminal
// outcomes. Workers are fully independent: a failure or panic in one never
// blocks or cancels another, and no resource is shared between them.
type Fleet struct {
	wiper  *Wiper
	logger *logging.Logger
}

// NewFleet creates a fleet coordinator over the given device wiper
func NewFleet(wiper *Wiper, logger *logging.Logger) *Fleet {
	return &Fleet{wiper: wiper, logger: logger}
}

// ValidateRequests rejects a bad batch before any device is touched
func ValidateRequests(reqs []Request) error {
	if len(reqs) == 0 {
		return fmt.Errorf("no devices specified")
	}

	seen := make(map[string]bool, len(reqs))
	for _, req := range reqs {
		if req.DevicePath == "" {
			return fmt.Errorf("empty device path")
		}
		if seen[req.DevicePath] {
			return fmt.Errorf("duplicate device: %s", req.DevicePath)
		}
		seen[req.DevicePath] = true

		if req.Passes < 1 {
			return fmt.Errorf("passes must be at least 1, got %d for %s", req.Passes, req.DevicePath)
		}
		if _, err := ParsePattern(string(req.Pattern)); err != nil {
			return fmt.Errorf("%s: %w", req.DevicePath, err)
		}
	}

	return nil
}

// Run launches one worker per request and blocks until every device reaches
// a terminal outcome. The returned map is keyed by device path and reported
// only after all workers finish. A validation error means no device was
// touched.
func (f *Fleet) Run(ctx context.Context, reqs []Request) (map[string]*Outcome, error) {
	if err := ValidateRequests(reqs); err != nil {
		return nil, fmt.Errorf("invalid wipe request: %w", err)
	}

	outcomes := make(chan *Outcome, len(reqs))

	var wg sync.WaitGroup
	for _, req := range reqs {
		wg.Add(1)
		go func(req Request) {
			defer wg.Done()
			outcomes <- f.runOne(ctx, req)
		}(req)
	}

	wg.Wait()
	close(outcomes)

	results := make(map[string]*Outcome, len(reqs))
	for out := range outcomes {
		results[out.Device] = out
	}

	return results, nil
}

// runOne is the per-worker panic barrier: a panicking worker becomes that
// device's IO_FAILURE outcome instead of taking down its siblings
func (f *Fleet) runOne(ctx context.Context, req Request) (out *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			if f.logger != nil {
				f.logger.Log("ERROR", "Wipe worker panicked", "device", req.DevicePath, "panic", r)
			}
			now := time.Now()
			out = &Outcome{
				Device:    req.DevicePath,
				Status:    StatusIoFailure,
				Reason:    fmt.Sprintf("internal failure: %v", r),
				Passes:    req.Passes,
				StartTime: now,
				EndTime:   now,
			}
		}
	}()

	return f.wiper.WipeDevice(ctx, req)
}

// AnyFailed reports whether any device ended in a non-success outcome
func AnyFailed(outcomes map[string]*Outcome) bool {
	for _, out := range outcomes {
		if out.Failed() {
			return true
		}
	}
	return false
}
