package loader

import (
	"context"
	"errors"
	"sync"
	"time"
)

// OpenFunc performs the actual import. Load is the default.
type OpenFunc func(ctx context.Context, path string, onProgress func(Progress)) (*Asset, error)

// Options bound an asynchronous load.
type Options struct {
	// Timeout caps the whole load. Zero disables it.
	Timeout time.Duration
	// StallTimeout fails the load when no progress arrives for this long.
	// Zero disables it.
	StallTimeout time.Duration
	// Open overrides the importer, mainly for tests.
	Open OpenFunc
}

// Result is delivered exactly once per Job.
type Result struct {
	Asset *Asset
	Err   error
}

// Job is an in-flight load. Poll it from the frame thread.
type Job struct {
	path    string
	results chan Result
	cancel  context.CancelFunc

	mu           sync.RWMutex
	progress     Progress
	lastProgress time.Time
	delivered    bool
}

// Start begins loading path on a new goroutine.
func Start(ctx context.Context, path string, opts Options) *Job {
	open := opts.Open
	if open == nil {
		open = Load
	}

	ctx, cancel := context.WithCancel(ctx)
	j := &Job{
		path:         path,
		results:      make(chan Result, 1),
		cancel:       cancel,
		progress:     Progress{Stage: StageQueued},
		lastProgress: time.Now(),
	}

	go j.run(ctx, open, opts)
	return j
}

func (j *Job) run(ctx context.Context, open OpenFunc, opts Options) {
	defer j.cancel()

	loadCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	// buffered so an abandoned import can still finish and exit
	done := make(chan Result, 1)
	go func() {
		asset, err := open(loadCtx, j.path, j.report)
		done <- Result{Asset: asset, Err: err}
	}()

	var stall <-chan time.Time
	if opts.StallTimeout > 0 {
		interval := opts.StallTimeout / 4
		if interval < time.Millisecond {
			interval = time.Millisecond
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		stall = ticker.C
	}

	for {
		select {
		case res := <-done:
			if res.Err == nil && res.Asset == nil {
				res.Err = ErrNoScene
			}
			if res.Err != nil && errors.Is(loadCtx.Err(), context.DeadlineExceeded) {
				res = Result{Err: ErrTimeout}
			}
			j.results <- res
			return
		case <-loadCtx.Done():
			err := loadCtx.Err()
			if errors.Is(err, context.DeadlineExceeded) {
				err = ErrTimeout
			}
			j.results <- Result{Err: err}
			return
		case now := <-stall:
			j.mu.RLock()
			idle := now.Sub(j.lastProgress)
			j.mu.RUnlock()
			if idle >= opts.StallTimeout {
				j.results <- Result{Err: ErrStalled}
				return
			}
		}
	}
}

func (j *Job) report(p Progress) {
	j.mu.Lock()
	j.progress = p
	j.lastProgress = time.Now()
	j.mu.Unlock()
}

// Path is the file being loaded.
func (j *Job) Path() string {
	return j.path
}

// Progress returns the most recent progress report.
func (j *Job) Progress() Progress {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.progress
}

// Poll returns the result without blocking. ok is true once, when the
// result first becomes available.
func (j *Job) Poll() (Result, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.delivered {
		return Result{}, false
	}
	select {
	case res := <-j.results:
		j.delivered = true
		return res, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the result arrives or ctx ends.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case res := <-j.results:
		j.mu.Lock()
		j.delivered = true
		j.mu.Unlock()
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Cancel abandons the load. A result may still arrive and should be ignored.
func (j *Job) Cancel() {
	j.cancel()
}
