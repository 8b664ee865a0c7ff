// Package tasks provides a small in-memory background task queue with
// observable completion, used for calendar side effects that must not
// block ledger writes.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Task is a named unit of background work.
type Task struct {
	Run  func(ctx context.Context) error
	Name string
}

// Result reports a finished task. Err is nil on success.
type Result struct {
	Err  error
	Name string
}

// Queue runs tasks on a single worker goroutine, in enqueue order, and
// publishes one Result per task. Calendar side effects are deliberately
// not retried here; a failed task only surfaces through its Result.
type Queue struct {
	tasks     chan Task
	results   chan Result
	closeOnce sync.Once
	closed    chan struct{}
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// NewQueue creates a queue that can buffer up to size pending tasks.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		tasks:   make(chan Task, size),
		results: make(chan Result, size),
		closed:  make(chan struct{}),
		logger:  logger,
	}
}

// Start launches the worker. It returns immediately; the worker runs
// until the context is canceled or Stop is called.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go q.worker(ctx)
}

// Enqueue schedules a task. It fails when the queue is stopped or full
// rather than blocking the caller.
func (q *Queue) Enqueue(task Task) error {
	if task.Run == nil {
		return fmt.Errorf("task %q has no work", task.Name)
	}

	select {
	case <-q.closed:
		return fmt.Errorf("queue is closed")
	default:
	}

	select {
	case q.tasks <- task:
		return nil
	default:
		return fmt.Errorf("queue is full, dropping task %q", task.Name)
	}
}

// Results exposes the completion stream. Consumers that do not drain it
// still cannot stall the worker; results are dropped once the buffer is
// full.
func (q *Queue) Results() <-chan Result {
	return q.results
}

// Stop closes the queue and waits for the in-flight task to finish.
func (q *Queue) Stop() {
	q.closeOnce.Do(func() {
		close(q.closed)
		close(q.tasks)
	})
	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-q.tasks:
			if !ok {
				return
			}

			err := task.Run(ctx)
			if err != nil {
				q.logger.Warn("background task failed", "task", task.Name, "error", err)
			} else {
				q.logger.Debug("background task completed", "task", task.Name)
			}

			select {
			case q.results <- Result{Name: task.Name, Err: err}:
			default:
			}
		}
	}
}
