package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of background work. Implementations identify themselves
// so retries and failures can be traced back to the originating record.
type Task interface {
	TaskID() string
	TaskKind() string
}

// Handler executes a single task.
type Handler[T Task] func(context.Context, T) error

// QueueConfig tunes the worker pool.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

type envelope[T Task] struct {
	task    T
	attempt int
	queued  time.Time
}

// Queue dispatches tasks to a fixed pool of goroutine workers. A failed
// task is retried with a linearly growing delay until MaxRetries is
// exhausted, at which point it is dropped and logged.
type Queue[T Task] struct {
	name    string
	handler Handler[T]

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	tasks   chan envelope[T]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue that feeds tasks to the given handler.
func NewQueue[T Task](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		tasks:      make(chan envelope[T], cfg.BufferSize),
	}
}

// Start launches the worker pool. Calling Start twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.consume()
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for in-flight tasks to finish.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue submits a task for processing. It fails when the queue has not
// been started or has already been stopped.
func (q *Queue[T]) Enqueue(task T) error {
	return q.submit(envelope[T]{task: task, queued: time.Now().UTC()})
}

func (q *Queue[T]) submit(env envelope[T]) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.tasks <- env:
		return nil
	}
}

func (q *Queue[T]) consume() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case env := <-q.tasks:
			if err := q.handler(q.ctx, env.task); err != nil {
				q.retry(env, err)
			}
		}
	}
}

func (q *Queue[T]) retry(env envelope[T], err error) {
	env.attempt++
	if env.attempt > q.maxRetries {
		q.logger.Sugar().Errorw("task exceeded retries",
			"queue", q.name, "task_id", env.task.TaskID(), "kind", env.task.TaskKind(), "error", err)
		return
	}
	q.logger.Sugar().Warnw("task failed, retrying",
		"queue", q.name, "task_id", env.task.TaskID(), "kind", env.task.TaskKind(), "attempt", env.attempt, "error", err)

	delay := q.retryDelay * time.Duration(env.attempt)
	go func(e envelope[T]) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			return
		case <-timer.C:
			if err := q.submit(e); err != nil {
				q.logger.Sugar().Errorw("failed to requeue task",
					"queue", q.name, "task_id", e.task.TaskID(), "error", err)
			}
		}
	}(env)
}
