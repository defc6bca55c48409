package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is one unit of asynchronous work. Run is retried on error up to the
// queue's retry budget; Failed fires exactly once when retries are exhausted.
type Job interface {
	Name() string
	Run(ctx context.Context) error
	Failed(err error)
}

type Config struct {
	Workers    int
	MaxRetries int           // retries after the first attempt
	RetryDelay time.Duration // fixed delay between attempts
	JobTimeout time.Duration // per-attempt timeout, 0 = none
}

func DefaultConfig() Config {
	return Config{
		Workers:    4,
		MaxRetries: 1,
		RetryDelay: 30 * time.Second,
		JobTimeout: 60 * time.Second,
	}
}

// Queue runs jobs on a fixed pool of worker goroutines. Jobs for different
// searches are independent; nothing orders one job relative to another.
type Queue struct {
	jobs   chan Job
	config Config
	logger *logrus.Logger

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once

	// mu guards stopped so no Enqueue can send once Shutdown has begun
	// closing the jobs channel.
	mu      sync.Mutex
	stopped bool
}

func NewQueue(config Config, logger *logrus.Logger) *Queue {
	if config.Workers < 1 {
		config.Workers = 1
	}

	return &Queue{
		jobs:   make(chan Job, 64),
		config: config,
		logger: logger,
		stop:   make(chan struct{}),
	}
}

// Start launches the worker pool.
func (q *Queue) Start() {
	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}

	q.logger.WithField("workers", q.config.Workers).Info("Job queue started")
}

// Enqueue hands a job to the pool. It fails instead of blocking forever when
// the queue is saturated or shut down.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return fmt.Errorf("job queue is stopped")
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("job queue is full")
	}
}

// Shutdown stops intake and waits for in-flight jobs. Running jobs are never
// cancelled; they finish or fail on their own.
func (q *Queue) Shutdown() {
	q.stopOnce.Do(func() {
		q.mu.Lock()
		q.stopped = true
		q.mu.Unlock()

		// No sender can reach the channel once stopped is set, so closing
		// it here only signals the workers to drain and exit.
		close(q.stop)
		close(q.jobs)
	})
	q.wg.Wait()
	q.logger.Info("Job queue stopped")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for job := range q.jobs {
		q.execute(job)
	}

	q.logger.WithField("worker", id).Debug("Worker exiting")
}

func (q *Queue) execute(job Job) {
	var lastErr error

	for attempt := 0; attempt <= q.config.MaxRetries; attempt++ {
		lastErr = q.runOnce(job)
		if lastErr == nil {
			return
		}

		q.logger.WithFields(logrus.Fields{
			"job":     job.Name(),
			"attempt": attempt + 1,
			"error":   lastErr.Error(),
		}).Warn("Job attempt failed")

		if attempt == q.config.MaxRetries {
			break
		}

		select {
		case <-q.stop:
			// Shutting down; no point waiting out the delay.
			job.Failed(lastErr)
			return
		case <-time.After(q.config.RetryDelay):
		}
	}

	job.Failed(lastErr)
}

func (q *Queue) runOnce(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	ctx := context.Background()
	if q.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.config.JobTimeout)
		defer cancel()
	}

	return job.Run(ctx)
}
