// Package organizer implements the concurrent organize pipeline: one
// enumeration pass over the source directory feeds a bounded worker
// pool, each worker moves its file into the category folder named by
// the rules, and a collector aggregates per-file outcomes.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"tidy/internal/rules"
)

var (
	// ErrInvalidSource means the source path is missing or not a directory.
	ErrInvalidSource = errors.New("invalid source directory")
	// ErrInterrupted means the run was interrupted while draining;
	// completed moves stay in place and partial counts are returned.
	ErrInterrupted = errors.New("scan interrupted")
	// ErrLocked means another run holds the source directory.
	ErrLocked = errors.New("source directory locked by another run")
)

const lockFileName = ".tidy.lock"

// Run organizes the direct children of source. It returns the
// aggregated summary and one Outcome per file that reached a worker.
// Per-file failures never abort sibling files; only a bad source
// directory, a held lock, or an interrupt surface as an error.
func Run(ctx context.Context, source string, r *rules.Rules, opts Options, updates chan<- ProgressUpdate) (Summary, []Outcome, error) {
	summary := Summary{}

	info, err := os.Stat(source)
	if err != nil {
		return summary, nil, fmt.Errorf("%w: %s: %v", ErrInvalidSource, source, err)
	}
	if !info.IsDir() {
		return summary, nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidSource, source)
	}

	absRoot, err := filepath.Abs(source)
	if err != nil {
		return summary, nil, err
	}

	// One organize run per source directory at a time, across
	// processes. Preview touches nothing and needs no lock.
	if opts.Mode == ModeOrganize {
		lockPath := filepath.Join(absRoot, lockFileName)
		sessionLock := flock.New(lockPath)
		held, err := sessionLock.TryLock()
		if err != nil {
			return summary, nil, fmt.Errorf("lock %s: %w", lockPath, err)
		}
		if !held {
			return summary, nil, fmt.Errorf("%w: %s", ErrLocked, absRoot)
		}
		defer func() {
			_ = sessionLock.Unlock()
			_ = os.Remove(lockPath)
		}()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = r.Workers
	}
	drain := opts.DrainTimeout
	if drain <= 0 {
		drain = r.DrainTimeout
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Job)
	results := make(chan Outcome)
	m := newMover(r, opts)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(runCtx, jobs, results, m, updates)
		}()
	}

	var outcomes []Outcome
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for out := range results {
			outcomes = append(outcomes, out)
			switch out.Status {
			case StatusMoved, StatusPlanned:
				if out.Status == StatusMoved {
					summary.Moved++
				} else {
					summary.Planned++
				}
				send(updates, ProgressUpdate{ProcessedDelta: 1})
			case StatusSkipped:
				summary.Skipped++
				send(updates, ProgressUpdate{SkippedDelta: 1})
			case StatusFailed:
				summary.Failed++
				send(updates, ProgressUpdate{FailedDelta: 1})
			}
		}
	}()

	type enumeration struct {
		submitted int
		err       error
	}
	enumDone := make(chan enumeration, 1)
	go func() {
		defer close(jobs)

		entries, err := os.ReadDir(absRoot)
		if err != nil {
			enumDone <- enumeration{err: err}
			return
		}

		count := 0
		for _, entry := range entries {
			if !eligible(entry) {
				continue
			}
			job := Job{
				Path: filepath.Join(absRoot, entry.Name()),
				Name: entry.Name(),
				Base: absRoot,
			}
			select {
			case jobs <- job:
				count++
				send(updates, ProgressUpdate{TotalDelta: 1})
			case <-runCtx.Done():
				enumDone <- enumeration{submitted: count, err: runCtx.Err()}
				return
			}
		}
		enumDone <- enumeration{submitted: count}
	}()

	workersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(workersDone)
	}()

	interrupted := false
	timer := time.NewTimer(drain)
	defer timer.Stop()
	select {
	case <-workersDone:
	case <-timer.C:
		summary.TimedOut = true
		cancel()
		<-workersDone
	case <-ctx.Done():
		interrupted = true
		cancel()
		<-workersDone
	}
	if ctx.Err() != nil {
		interrupted = true
	}

	close(results)
	<-collectorDone

	enum := <-enumDone
	summary.Submitted = enum.submitted
	summary.DirsCreated = m.createdDirs()
	summary.Unfinished = enum.submitted - (summary.Moved + summary.Planned + summary.Skipped + summary.Failed)
	if summary.Unfinished < 0 {
		summary.Unfinished = 0
	}

	if interrupted {
		return summary, outcomes, fmt.Errorf("%w: %d of %d file(s) reached a terminal state", ErrInterrupted, enum.submitted-summary.Unfinished, enum.submitted)
	}
	if enum.err != nil && !errors.Is(enum.err, context.Canceled) {
		return summary, outcomes, enum.err
	}
	return summary, outcomes, nil
}

// worker drains jobs until the channel closes. After cancellation it
// keeps draining but abandons each remaining job with a skip outcome,
// so the producer is never wedged and every received job still reaches
// a terminal state.
func worker(ctx context.Context, jobs <-chan Job, results chan<- Outcome, m *mover, updates chan<- ProgressUpdate) {
	for job := range jobs {
		if ctx.Err() != nil {
			results <- Outcome{Source: job.Path, Status: StatusSkipped, Reason: "canceled"}
			continue
		}

		out, created := m.execute(job)
		if created > 0 {
			send(updates, ProgressUpdate{DirsCreatedDelta: created})
		}
		results <- out
	}
}

func send(updates chan<- ProgressUpdate, u ProgressUpdate) {
	if updates != nil {
		updates <- u
	}
}
