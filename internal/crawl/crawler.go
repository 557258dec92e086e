package crawl

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spinneret/spinneret/internal/logging"
	"github.com/spinneret/spinneret/internal/metrics"
)

// Config holds the settings for a crawl run.
type Config struct {
	// Workers is the size of the worker pool. Defaults to 1.
	Workers int
	// Client is handed to every handler invocation. May be nil when no
	// handler performs network calls (tests, synthetic crawls).
	Client Client
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Crawler composes the filter chain, handler table, task queue and worker
// pool. Register handlers and filters before calling Start; registration is
// not safe concurrently with a running crawl.
type Crawler struct {
	cfg      Config
	handlers *HandlerTable
	filters  *FilterChain
	queue    *TaskQueue
	logger   *zap.Logger

	mu        sync.Mutex
	taskErrs  []TaskError
	processed int
}

// Stats is a point-in-time snapshot of a run, served by the ops endpoint.
type Stats struct {
	QueueDepth int  `json:"queue_depth"`
	Pending    int  `json:"pending"`
	Processed  int  `json:"processed"`
	Errors     int  `json:"errors"`
	Aborted    bool `json:"aborted"`
}

// New constructs a Crawler.
func New(cfg Config) *Crawler {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	metrics.Init()
	return &Crawler{
		cfg:      cfg,
		handlers: NewHandlerTable(),
		filters:  NewFilterChain(),
		queue:    NewTaskQueue(),
		logger:   cfg.Logger,
	}
}

// Handle compiles pattern and registers fn at the given priority. Higher
// priority wins when several patterns match the same URL.
func (c *Crawler) Handle(pattern string, priority int, fn HandlerFunc) error {
	h, err := NewHandler(pattern, priority, fn)
	if err != nil {
		return err
	}
	c.handlers.Register(h)
	return nil
}

// RegisterHandler adds a pre-built handler to the table.
func (c *Crawler) RegisterHandler(h *Handler) {
	c.handlers.Register(h)
}

// Filter appends a filter to the admission chain.
func (c *Crawler) Filter(f Filter) {
	c.filters.Append(f)
}

// Push is shorthand for PushTask(NewTask(url)).
func (c *Crawler) Push(url string) {
	c.PushTask(NewTask(url))
}

// PushTask routes a candidate task through the filter chain and, if
// admitted, onto the queue. Control tasks bypass the chain. Pushing after
// the run has torn down is a silent no-op.
func (c *Crawler) PushTask(task *Task) {
	if task == nil {
		return
	}
	if task.Kind != KindNormal {
		c.queue.Push(task)
		return
	}
	ok, err := c.filters.Admit(task.URL)
	if err != nil {
		c.recordError(TaskError{TaskID: task.ID, URL: task.URL, Err: err})
		metrics.ObserveFiltered(task.URL)
		c.logger.Warn("filter failed, task rejected",
			zap.String("task", task.ID),
			zap.String("url", task.URL),
			zap.Error(err),
		)
		return
	}
	if !ok {
		metrics.ObserveFiltered(task.URL)
		c.logger.Debug("task filtered out",
			zap.String("task", task.ID),
			zap.String("url", task.URL),
		)
		return
	}
	if !c.queue.Push(task) {
		c.logger.Debug("queue closed, task dropped",
			zap.String("task", task.ID),
			zap.String("url", task.URL),
		)
		return
	}
	metrics.ObserveQueued()
	metrics.SetQueueDepth(c.queue.Len())
	c.logger.Debug("task queued",
		zap.String("task", task.ID),
		zap.String("url", task.URL),
		zap.Int("priority", task.Priority),
	)
}

// Stop requests a graceful drain-and-stop: the pool finishes all pending
// normal work, then exits.
func (c *Crawler) Stop() {
	c.queue.Push(StopTask())
}

// Abort requests immediate cooperative termination: each worker stops after
// its current task.
func (c *Crawler) Abort() {
	c.queue.Push(AbortTask())
}

// Start seeds the queue and runs the worker pool until no work remains or an
// abort is observed. It blocks until every worker has exited and returns the
// terminal status. Per-task failures do not affect the status; retrieve them
// with Errors.
func (c *Crawler) Start(ctx context.Context, seeds ...string) Status {
	for _, url := range seeds {
		// Seed tasks sit just below default priority so follow-ups
		// discovered by handlers are processed ahead of remaining seeds.
		c.PushTask(NewTask(url).WithPriority(-1))
	}

	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.queue.Abort()
		case <-watchDone:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.runWorker(ctx, logging.ForWorker(c.logger, id))
		}(i)
	}
	wg.Wait()
	close(watchDone)
	c.queue.Close()

	status := StatusCompleted
	if c.queue.Aborted() || ctx.Err() != nil {
		status = StatusAborted
	}
	c.logger.Info("crawl finished",
		zap.Stringer("status", status),
		zap.Int("processed", c.Stats().Processed),
		zap.Int("errors", len(c.Errors())),
	)
	return status
}

// Errors returns the per-task failures recorded during the run.
func (c *Crawler) Errors() []TaskError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TaskError, len(c.taskErrs))
	copy(out, c.taskErrs)
	return out
}

// Stats returns a snapshot of queue and pool counters.
func (c *Crawler) Stats() Stats {
	c.mu.Lock()
	processed := c.processed
	errCount := len(c.taskErrs)
	c.mu.Unlock()
	return Stats{
		QueueDepth: c.queue.Len(),
		Pending:    c.queue.Pending(),
		Processed:  processed,
		Errors:     errCount,
		Aborted:    c.queue.Aborted(),
	}
}

func (c *Crawler) runWorker(ctx context.Context, logger *zap.Logger) {
	for {
		task := c.queue.Pop()
		metrics.SetQueueDepth(c.queue.Len())
		switch task.Kind {
		case KindAbort:
			c.queue.Abort()
			logger.Info("abort observed, worker exiting")
			return
		case KindStop:
			// Re-push so every other blocked worker also observes the
			// stop once the queue is truly empty.
			c.queue.Push(StopTask())
			logger.Debug("stop observed, worker exiting")
			return
		default:
			c.process(ctx, logger, task)
		}
	}
}

func (c *Crawler) process(ctx context.Context, logger *zap.Logger, task *Task) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()
	defer c.queue.MarkDone()

	handler := task.Handler
	if handler == nil {
		handler = c.handlers.Select(task.URL)
	}
	if handler == nil {
		metrics.ObserveUnrouted()
		logger.Info("no handler matches, task discarded", zap.String("url", task.URL))
		return
	}

	logger.Debug("task started", zap.String("task", task.ID), zap.String("url", task.URL))
	start := time.Now()
	followUps, err := handler.invoke(ctx, &Request{
		Client: c.cfg.Client,
		URL:    task.URL,
		Data:   task.Data,
		Groups: handler.Groups(task.URL),
	})
	if err != nil {
		metrics.ObserveProcessed(task.URL, "error", time.Since(start))
		c.recordError(TaskError{TaskID: task.ID, URL: task.URL, Err: err})
		logger.Error("task failed",
			zap.String("task", task.ID),
			zap.String("url", task.URL),
			zap.Error(err),
		)
		return
	}

	for _, next := range followUps {
		c.PushTask(next)
	}
	metrics.ObserveProcessed(task.URL, "ok", time.Since(start))
	c.mu.Lock()
	c.processed++
	c.mu.Unlock()
	logger.Debug("task finished",
		zap.String("task", task.ID),
		zap.String("url", task.URL),
		zap.Int("follow_ups", len(followUps)),
	)
}

func (c *Crawler) recordError(te TaskError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taskErrs = append(c.taskErrs, te)
}
