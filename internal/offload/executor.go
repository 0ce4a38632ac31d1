// Package offload runs blocking work on a dedicated worker pool.
//
// HTTP handlers must never block the serving goroutine's event loop on
// database I/O. Services wrap each pool acquisition plus statement in a
// closure and hand it to an Executor; the closure runs on one of a fixed
// number of workers and the result comes back through Do. Submission is
// bounded twice: by the queue depth and by a maximum wait when the queue
// is full, so sustained overload surfaces as ErrSaturated instead of an
// ever-growing backlog.
package offload

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrClosed is returned by Submit after Close has been called.
	ErrClosed = errors.New("offload: executor closed")

	// ErrSaturated is returned when the queue stays full for the whole
	// submit wait.
	ErrSaturated = errors.New("offload: task queue saturated")
)

// PanicError wraps a panic recovered from an offloaded task so it can be
// delivered to the caller as an ordinary error.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("offloaded task panicked: %v", e.Value)
}

// Executor is a fixed-size worker pool with a bounded task queue.
type Executor struct {
	tasks      chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
	submitWait time.Duration
	logger     zerolog.Logger
}

// New starts workers goroutines consuming a queue of queueDepth tasks.
// submitWait bounds how long Submit blocks once the queue is full.
func New(workers, queueDepth int, submitWait time.Duration, logger zerolog.Logger) *Executor {
	if workers < 1 {
		workers = 1
	}
	if queueDepth < 1 {
		queueDepth = 1
	}

	e := &Executor{
		tasks:      make(chan func(), queueDepth),
		done:       make(chan struct{}),
		submitWait: submitWait,
		logger:     logger,
	}

	e.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go e.worker()
	}

	return e
}

func (e *Executor) worker() {
	defer e.wg.Done()

	for {
		select {
		case <-e.done:
			// Drain whatever was queued before shutdown.
			for {
				select {
				case task := <-e.tasks:
					e.runTask(task)
				default:
					return
				}
			}
		case task := <-e.tasks:
			e.runTask(task)
		}
	}
}

// runTask guards the worker goroutine against tasks submitted through
// Submit directly; tasks built by Do carry their own recovery.
func (e *Executor) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("offloaded task panicked")
		}
	}()

	task()
}

// Submit enqueues task for execution. It returns immediately when queue
// space is available, otherwise it waits up to the configured submit
// wait before giving up with ErrSaturated. Once Submit returns nil the
// task will run to completion regardless of ctx.
func (e *Executor) Submit(ctx context.Context, task func()) error {
	select {
	case <-e.done:
		return ErrClosed
	default:
	}

	select {
	case e.tasks <- task:
		return nil
	case <-e.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	timer := time.NewTimer(e.submitWait)
	defer timer.Stop()

	select {
	case e.tasks <- task:
		return nil
	case <-e.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrSaturated
	}
}

// Close stops accepting new tasks, lets the workers drain the queue, and
// waits for them to exit.
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
	})

	e.wg.Wait()
}

// Do submits fn and waits for its result. A panic inside fn is delivered
// as a *PanicError. When ctx is canceled while waiting, Do returns the
// context error and the running task's eventual result is discarded.
func Do[T any](ctx context.Context, e *Executor, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	// Buffered so an abandoned task never blocks its worker on send.
	resultCh := make(chan result, 1)

	task := func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- result{err: &PanicError{Value: r, Stack: debug.Stack()}}
			}
		}()

		value, err := fn()
		resultCh <- result{value: value, err: err}
	}

	var zero T

	if err := e.Submit(ctx, task); err != nil {
		return zero, err
	}

	select {
	case res := <-resultCh:
		return res.value, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
