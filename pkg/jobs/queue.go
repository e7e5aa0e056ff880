package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of background work identified by its registered name.
type Task struct {
	Name     string
	Payload  interface{}
	attempts int
	queued   time.Time
}

// TaskFunc executes a task of one registered kind.
type TaskFunc func(ctx context.Context, task Task) error

// Options tunes the dispatcher worker pool.
type Options struct {
	Workers    int
	Buffer     int
	MaxRetries int
	RetryDelay time.Duration
}

// Dispatcher fans queued tasks out to a pool of workers. Handlers are
// looked up by task name, so one dispatcher can serve several
// maintenance concerns.
type Dispatcher struct {
	logger *zap.Logger
	opts   Options

	mu       sync.RWMutex
	handlers map[string]TaskFunc
	running  bool

	tasks  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher builds an idle dispatcher. Register handlers before Start.
func NewDispatcher(opts Options, logger *zap.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Buffer <= 0 {
		opts.Buffer = opts.Workers * 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		logger:   logger,
		opts:     opts,
		handlers: map[string]TaskFunc{},
		tasks:    make(chan Task, opts.Buffer),
	}
}

// Register binds a handler to a task name. Register before Start.
func (d *Dispatcher) Register(name string, fn TaskFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = fn
}

// Start launches the worker pool. Calling Start twice is a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	d.running = true
	d.logger.Sugar().Infow("dispatcher started", "workers", d.opts.Workers)
}

// Stop cancels the workers and blocks until they drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.cancel()
	d.mu.Unlock()
	d.wg.Wait()
	d.logger.Sugar().Infow("dispatcher stopped")
}

// Submit queues a task for execution.
func (d *Dispatcher) Submit(task Task) error {
	d.mu.RLock()
	running := d.running
	ctx := d.ctx
	_, known := d.handlers[task.Name]
	d.mu.RUnlock()

	if !running {
		return fmt.Errorf("dispatcher not started")
	}
	if !known {
		return fmt.Errorf("no handler registered for task %q", task.Name)
	}
	if task.queued.IsZero() {
		task.queued = time.Now().UTC()
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("dispatcher stopped: %w", ctx.Err())
	case d.tasks <- task:
		return nil
	}
}

// Every submits the task on a fixed interval until the dispatcher stops.
// The dispatcher must be started first; scheduling on an idle dispatcher
// is reported and ignored.
func (d *Dispatcher) Every(interval time.Duration, task Task) {
	d.mu.RLock()
	running := d.running
	ctx := d.ctx
	d.mu.RUnlock()
	if !running {
		d.logger.Sugar().Warnw("cannot schedule task on a stopped dispatcher", "task", task.Name)
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := d.Submit(task); err != nil {
					d.logger.Sugar().Warnw("failed to submit scheduled task", "task", task.Name, "error", err)
					return
				}
			}
		}
	}()
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case task := <-d.tasks:
			d.run(task)
		}
	}
}

func (d *Dispatcher) run(task Task) {
	d.mu.RLock()
	fn := d.handlers[task.Name]
	d.mu.RUnlock()

	err := fn(d.ctx, task)
	if err == nil {
		return
	}
	task.attempts++
	if task.attempts > d.opts.MaxRetries {
		d.logger.Sugar().Errorw("task failed permanently", "task", task.Name, "attempts", task.attempts, "error", err)
		return
	}
	d.logger.Sugar().Warnw("task failed, retrying", "task", task.Name, "attempt", task.attempts, "error", err)
	go func(t Task) {
		timer := time.NewTimer(d.opts.RetryDelay)
		defer timer.Stop()
		select {
		case <-d.ctx.Done():
		case <-timer.C:
			select {
			case <-d.ctx.Done():
			case d.tasks <- t:
			}
		}
	}(task)
}
