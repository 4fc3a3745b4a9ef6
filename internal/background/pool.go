package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"qrstudio-backend/pkg/logger"
)

// Task is a unit of deferred work. Tasks sharing a Key are collapsed while
// one of them is queued or running.
type Task struct {
	Key     string
	Run     func(ctx context.Context) error
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

var (
	ErrPoolNotStarted = errors.New("task pool not started")
	ErrTaskPending    = errors.New("task already pending")
	errPoolStopping   = errors.New("task pool is shutting down")
)

type Pool struct {
	workers int

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	pending map[string]struct{}

	queue chan queuedTask
	wg    sync.WaitGroup
}

type queuedTask struct {
	task    Task
	attempt int
}

var (
	metricsOnce   sync.Once
	taskRuns      *prometheus.CounterVec
	taskDurations *prometheus.HistogramVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		taskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrstudio",
			Subsystem: "tasks",
			Name:      "runs_total",
			Help:      "Background task executions by kind and outcome",
		}, []string{"kind", "status"})

		taskDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qrstudio",
			Subsystem: "tasks",
			Name:      "duration_seconds",
			Help:      "Duration of background task executions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"})
	})
}

func NewPool(workers, queueSize int) *Pool {
	initMetrics()

	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	return &Pool{
		workers: workers,
		queue:   make(chan queuedTask, queueSize),
		pending: make(map[string]struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case qt := <-p.queue:
			p.handle(qt)
		}
	}
}

func (p *Pool) handle(qt queuedTask) {
	err := p.run(qt)
	if err != nil && qt.attempt <= qt.task.Retries && !errors.Is(err, context.Canceled) {
		if qt.task.Backoff > 0 {
			timer := time.NewTimer(qt.task.Backoff)
			select {
			case <-timer.C:
			case <-p.ctx.Done():
				timer.Stop()
				p.release(qt.task.Key)
				return
			}
		}
		qt.attempt++
		// Workers never block on their own queue.
		select {
		case p.queue <- qt:
			return
		default:
		}
	}

	p.release(qt.task.Key)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(err, "Background task failed", map[string]interface{}{"task": qt.task.Key, "attempt": qt.attempt})
	}
}

func (p *Pool) run(qt queuedTask) (err error) {
	kind := taskKind(qt.task.Key)
	start := time.Now()
	status := "success"

	ctx := p.ctx
	if qt.task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, qt.task.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			status = "failure"
			if errors.Is(err, context.Canceled) {
				status = "canceled"
			}
		}
		taskDurations.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		taskRuns.WithLabelValues(kind, status).Inc()
	}()

	return qt.task.Run(ctx)
}

func (p *Pool) release(key string) {
	p.mu.Lock()
	delete(p.pending, key)
	p.mu.Unlock()
}

// Submit queues task unless a task with the same key is still pending.
func (p *Pool) Submit(task Task) error {
	if task.Key == "" {
		return errors.New("task key is required")
	}
	if task.Run == nil {
		return errors.New("task runner is required")
	}

	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrPoolNotStarted
	}
	if _, exists := p.pending[task.Key]; exists {
		p.mu.Unlock()
		return ErrTaskPending
	}
	p.pending[task.Key] = struct{}{}
	ctx := p.ctx
	p.mu.Unlock()

	select {
	case p.queue <- queuedTask{task: task, attempt: 1}:
		return nil
	case <-ctx.Done():
		p.release(task.Key)
		return errPoolStopping
	}
}

func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	cancel := p.cancel
	p.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending counts tasks queued or running.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// taskKind keeps metric cardinality bounded: "render:abc" is labelled "render".
func taskKind(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	return key
}
