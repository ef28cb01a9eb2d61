package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/revet/domain"
	"github.com/ludo-technologies/revet/internal/config"
)

// DefaultTimeout bounds a whole Execute call when the config carries no
// explicit limit.
const DefaultTimeout = 5 * time.Minute

// TaskError ties a failure to the task that produced it
type TaskError struct {
	TaskName string
	Err      error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

func (e TaskError) Unwrap() error {
	return e.Err
}

// AggregatedError collects every task failure from one Execute call.
// A failing task never prevents the others from running, so callers get
// all failures at once instead of the first one.
type AggregatedError struct {
	Errors []TaskError
}

func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	parts := make([]string, len(e.Errors))
	for i, te := range e.Errors {
		parts[i] = te.Error()
	}
	return fmt.Sprintf("%d tasks failed: %s", len(e.Errors), strings.Join(parts, "; "))
}

// Unwrap exposes the first failure to errors.Is/As
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// ParallelExecutorImpl fans review tasks out over a bounded set of workers
type ParallelExecutorImpl struct {
	maxConcurrency int
	timeout        time.Duration
	progress       domain.ProgressManager
	mu             sync.RWMutex
}

// NewParallelExecutor returns an executor sized to the machine: one worker
// per CPU and the default whole-run timeout.
func NewParallelExecutor() *ParallelExecutorImpl {
	return &ParallelExecutorImpl{
		maxConcurrency: runtime.NumCPU(),
		timeout:        DefaultTimeout,
	}
}

// NewParallelExecutorFromConfig sizes the executor from the performance
// section, falling back to machine defaults for unset values
func NewParallelExecutorFromConfig(cfg *config.PerformanceConfig) *ParallelExecutorImpl {
	e := NewParallelExecutor()
	if cfg.MaxGoroutines > 0 {
		e.maxConcurrency = cfg.MaxGoroutines
	}
	if cfg.TimeoutSeconds > 0 {
		e.timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return e
}

// NewParallelExecutorWithProgress additionally reports per-task progress
func NewParallelExecutorWithProgress(cfg *config.PerformanceConfig, pm domain.ProgressManager) *ParallelExecutorImpl {
	e := NewParallelExecutorFromConfig(cfg)
	e.progress = pm
	return e
}

// SetMaxConcurrency overrides the worker count; non-positive values are
// ignored
func (e *ParallelExecutorImpl) SetMaxConcurrency(n int) {
	if n <= 0 {
		return
	}
	e.mu.Lock()
	e.maxConcurrency = n
	e.mu.Unlock()
}

// Execute runs the enabled tasks on a fixed worker pool. Task errors are
// collected, not propagated: the pool drains every task, then reports all
// failures as one AggregatedError. Cancellation of ctx (or the whole-run
// timeout) stops workers between tasks; when the executor's own deadline
// truncated the run while the caller's context was still live, the error
// matches context.DeadlineExceeded so callers can mark the output partial.
func (e *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	pending := make([]domain.ExecutableTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsEnabled() {
			pending = append(pending, t)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	e.mu.RLock()
	workers := e.maxConcurrency
	timeout := e.timeout
	e.mu.RUnlock()
	if workers > len(pending) {
		workers = len(pending)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bar domain.TaskProgress = &NoOpTaskProgress{}
	if e.progress != nil {
		bar = e.progress.StartTask("Reviewing files", len(pending))
	}
	defer bar.Complete()

	queue := make(chan domain.ExecutableTask)
	var errMu sync.Mutex
	var failures []TaskError

	g, gCtx := errgroup.WithContext(runCtx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for t := range queue {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				if _, err := t.Execute(gCtx); err != nil {
					// a task aborted by the run context is truncation,
					// not a task failure
					if gCtx.Err() != nil {
						return err
					}
					errMu.Lock()
					failures = append(failures, TaskError{TaskName: t.Name(), Err: err})
					errMu.Unlock()
				}
				bar.Increment(1)
			}
			return nil
		})
	}

feed:
	for _, t := range pending {
		select {
		case queue <- t:
		case <-gCtx.Done():
			break feed
		}
	}
	close(queue)
	_ = g.Wait()

	var errs []error
	if len(failures) > 0 {
		errs = append(errs, &AggregatedError{Errors: failures})
	}
	if ctx.Err() == nil && runCtx.Err() != nil {
		errs = append(errs, fmt.Errorf("execution stopped after %s: %w", timeout, context.DeadlineExceeded))
	}
	return errors.Join(errs...)
}
