package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/openingcoach/openingcoach/pkg/models"
)

// ErrTimedOut is returned by Pool.Run when the wall-clock deadline expires
// before the work function finishes. Queue wait counts against the deadline.
var ErrTimedOut = errors.New("execution timed out")

// ErrPoolClosed is returned by Pool.Run after Close.
var ErrPoolClosed = errors.New("execution pool is closed")

// Task is one unit of work. It must honor ctx cancellation: a timed-out task
// is abandoned, and its ctx is the only signal it gets to stop.
type Task func(ctx context.Context) (*models.AnalysisReport, error)

type taskResult struct {
	report *models.AnalysisReport
	err    error
}

type poolTask struct {
	ctx  context.Context
	fn   Task
	done chan taskResult
}

// Pool runs tasks on a fixed number of worker goroutines with FIFO
// backpressure: when every worker is busy, Run queues behind earlier calls.
// It replaces the ambient process-pool global with an explicitly constructed
// instance whose lifetime is owned by main.
type Pool struct {
	tasks chan poolTask
	quit  chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPool starts workers goroutines and returns the pool.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		tasks: make(chan poolTask),
		quit:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case t := <-p.tasks:
			// The caller may have timed out while the task sat in the queue.
			if t.ctx.Err() != nil {
				continue
			}
			t.done <- runTask(t.ctx, t.fn)
		}
	}
}

// runTask executes fn, converting a panic into an error so a crashing work
// function cannot take down the worker goroutine.
func runTask(ctx context.Context, fn Task) (res taskResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in pool task", "error", r, "stack", string(debug.Stack()))
			res = taskResult{err: fmt.Errorf("analysis panicked: %v", r)}
		}
	}()
	report, err := fn(ctx)
	return taskResult{report: report, err: err}
}

// Run submits fn and blocks until it finishes or ctx expires, whichever
// comes first. On expiry it returns ErrTimedOut (or the ctx error for plain
// cancellation) immediately without waiting for the task to unwind: the done
// channel is buffered so an abandoned worker never blocks signaling a result
// nobody will read.
func (p *Pool) Run(ctx context.Context, fn Task) (*models.AnalysisReport, error) {
	t := poolTask{ctx: ctx, fn: fn, done: make(chan taskResult, 1)}

	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return nil, timeoutErr(ctx)
	case <-p.quit:
		return nil, ErrPoolClosed
	}

	select {
	case res := <-t.done:
		return res.report, res.err
	case <-ctx.Done():
		return nil, timeoutErr(ctx)
	case <-p.quit:
		return nil, ErrPoolClosed
	}
}

func timeoutErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimedOut
	}
	return ctx.Err()
}

// Close stops the workers and waits for them to exit. Tasks still queued are
// never started; their Run callers get ErrPoolClosed.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
