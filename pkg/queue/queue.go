// Package queue runs deferred document work: batches of named callbacks
// drained in order with bounded retry. Batches survive restarts through the
// SQLite store; callbacks re-bind by name from the registry.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxAttempts is how many times a task runs before it is dropped.
const MaxAttempts = 3

// Task is one unit of deferred work. Attempts counts failed invocations so
// far; it persists across restarts.
type Task struct {
	ID       string
	Callback string
	Args     map[string]any
	Attempts int
}

// NewTask builds a task with a fresh id.
func NewTask(callback string, args map[string]any) Task {
	return Task{ID: uuid.NewString(), Callback: callback, Args: args}
}

// Batch is an ordered run of tasks. Order within a batch is strict: a task
// does not start until its predecessor completed or was dropped.
type Batch struct {
	ID        string
	CreatedAt time.Time
	Tasks     []Task
}

// NewBatch builds a batch with a fresh id.
func NewBatch(tasks ...Task) Batch {
	return Batch{ID: uuid.NewString(), CreatedAt: time.Now().UTC(), Tasks: tasks}
}

// Empty reports whether the batch has no tasks.
func (b Batch) Empty() bool { return len(b.Tasks) == 0 }

// CallbackFunc executes one task.
type CallbackFunc func(ctx context.Context, task Task) error

// Registry maps callback names to functions so persisted tasks can re-bind
// after a restart.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]CallbackFunc
}

// NewRegistry creates an empty callback registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]CallbackFunc)}
}

// Register binds a name to a callback. Duplicate names are rejected.
func (r *Registry) Register(name string, fn CallbackFunc) error {
	if name == "" || fn == nil {
		return errors.New("queue: callback name and function required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("queue: callback %q already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// MustRegister registers or panics. For wiring done at startup.
func (r *Registry) MustRegister(name string, fn CallbackFunc) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Get returns the callback bound to name.
func (r *Registry) Get(name string) (CallbackFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether a callback is bound.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns the bound callback names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	return out
}

// Option configures a Queue.
type Option func(*Queue)

// WithStore attaches persistence; batches pushed or dispatched are written
// through and cleaned up as tasks complete.
func WithStore(store *Store) Option {
	return func(q *Queue) { q.store = store }
}

// WithLogger sets the queue logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// WithMaxAttempts overrides the retry bound.
func WithMaxAttempts(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.maxAttempts = n
		}
	}
}

// Queue drains batches of tasks through registered callbacks.
type Queue struct {
	registry    *Registry
	store       *Store
	logger      *slog.Logger
	maxAttempts int
}

// New creates a queue over the given callback registry.
func New(registry *Registry, options ...Option) *Queue {
	q := &Queue{
		registry:    registry,
		logger:      slog.Default(),
		maxAttempts: MaxAttempts,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(q)
	}
	return q
}

// Push persists a batch for a later drain. Without a store it is a no-op
// beyond validation.
func (q *Queue) Push(ctx context.Context, batch Batch) error {
	if batch.Empty() {
		return nil
	}
	for _, task := range batch.Tasks {
		if !q.registry.Has(task.Callback) {
			return fmt.Errorf("queue: push batch %s: unknown callback %q", batch.ID, task.Callback)
		}
	}
	if q.store == nil {
		return nil
	}
	if err := q.store.SaveBatch(ctx, batch); err != nil {
		return fmt.Errorf("queue: push batch %s: %w", batch.ID, err)
	}
	return nil
}

// Dispatch persists the batch then drains it to completion. An empty batch is
// a no-op with no side effects.
func (q *Queue) Dispatch(ctx context.Context, batch Batch) error {
	if batch.Empty() {
		return nil
	}
	if err := q.Push(ctx, batch); err != nil {
		return err
	}
	return q.Drain(ctx, batch)
}

// Drain runs the batch front to back. A failing task is retried at the front
// of the batch with its attempt count bumped; at the attempt bound it is
// dropped with a log entry and the rest of the batch continues. Only context
// cancellation aborts a drain.
func (q *Queue) Drain(ctx context.Context, batch Batch) error {
	tasks := make([]Task, len(batch.Tasks))
	copy(tasks, batch.Tasks)

	for len(tasks) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("queue: drain batch %s: %w", batch.ID, err)
		}

		task := tasks[0]
		tasks = tasks[1:]

		err := q.invoke(ctx, task)
		if err == nil {
			q.completeTask(ctx, task)
			continue
		}

		task.Attempts++
		if task.Attempts >= q.maxAttempts {
			q.logger.Error("task dropped after retry bound",
				slog.String("batch", batch.ID),
				slog.String("task", task.ID),
				slog.String("callback", task.Callback),
				slog.Int("attempts", task.Attempts),
				slog.Any("error", err),
			)
			q.completeTask(ctx, task)
			continue
		}

		q.logger.Warn("task failed, requeueing",
			slog.String("task", task.ID),
			slog.String("callback", task.Callback),
			slog.Int("attempts", task.Attempts),
			slog.Any("error", err),
		)
		if q.store != nil {
			if storeErr := q.store.UpdateAttempts(ctx, task.ID, task.Attempts); storeErr != nil {
				q.logger.Error("persist attempt count", slog.String("task", task.ID), slog.Any("error", storeErr))
			}
		}
		tasks = append([]Task{task}, tasks...)
	}

	if q.store != nil {
		if err := q.store.DeleteBatch(ctx, batch.ID); err != nil {
			q.logger.Error("delete drained batch", slog.String("batch", batch.ID), slog.Any("error", err))
		}
	}
	return nil
}

func (q *Queue) invoke(ctx context.Context, task Task) error {
	fn, ok := q.registry.Get(task.Callback)
	if !ok {
		return fmt.Errorf("queue: unknown callback %q", task.Callback)
	}
	return fn(ctx, task)
}

func (q *Queue) completeTask(ctx context.Context, task Task) {
	if q.store == nil {
		return
	}
	if err := q.store.DeleteTask(ctx, task.ID); err != nil {
		q.logger.Error("delete completed task", slog.String("task", task.ID), slog.Any("error", err))
	}
}
