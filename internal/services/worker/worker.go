// Package worker runs PDF extractions in the background.
//
// Go Pattern: Goroutines and channels are Go's concurrency primitives.
// A goroutine is like a lightweight thread (thousands are fine), and
// channels are typed pipes for communication between goroutines.
//
// This worker pool pattern is very common in Go:
// 1. Create a buffered channel as a job queue
// 2. Spawn N worker goroutines that read from the channel
// 3. Send jobs to the channel from your HTTP handlers
// 4. Workers process jobs concurrently
//
// Extraction takes minutes, so the HTTP handler only records the job and
// queues it; the client polls the job (or listens on the live feed).
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/models"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/extraction"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// ErrQueueFull is returned when the job queue has no room.
var ErrQueueFull = &apperrors.CustomError{Err: errors.New("queue full"), Message: "Extraction queue is full; try again later."}

// ErrStopped is returned by Enqueue after Stop.
var ErrStopped = errors.New("worker pool stopped")

// Extractor turns PDF bytes into a paper. *extraction.Gateway satisfies it.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (*models.ParsedPaper, error)
}

// Job is a queued extraction. The PDF lives only in memory; the store
// keeps the job's status and result.
type Job struct {
	ID        string
	PDF       []byte
	Filename  string
	CreatedAt time.Time
}

// Pool manages a pool of worker goroutines.
type Pool struct {
	// Go Pattern: Channels are the backbone of Go concurrency.
	// This buffered channel acts as our job queue.
	// Buffered means it can hold `queueSize` jobs before blocking.
	jobs      chan Job
	workers   int
	store     store.JobStore
	extractor Extractor
	log       zerolog.Logger

	// Go Pattern: sync.WaitGroup tracks running goroutines.
	// We call wg.Add(1) when starting a worker, wg.Done() when it finishes,
	// and wg.Wait() blocks until all workers are done (used for graceful shutdown).
	wg sync.WaitGroup

	// mu guards stopped so Enqueue never sends on a closed channel.
	mu      sync.RWMutex
	stopped bool

	// Go Pattern: context.Context with cancel for graceful shutdown.
	// When we call cancel(), all workers' contexts are cancelled.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a new worker pool.
func NewPool(workers, queueSize int, jobs store.JobStore, ext Extractor, log zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		jobs:      make(chan Job, queueSize), // Buffered channel
		workers:   workers,
		store:     jobs,
		extractor: ext,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the worker goroutines.
// Go Pattern: The `go` keyword starts a new goroutine (lightweight thread).
// Each worker runs in its own goroutine, reading from the shared jobs channel.
func (p *Pool) Start() {
	p.log.Info().Int("workers", p.workers).Msg("🚀 Starting background workers")
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop cancels in-flight extractions, fails whatever is still queued and
// waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.log.Info().Msg("⏹️  Stopping workers...")
	p.cancel()
	close(p.jobs)
	p.wg.Wait()
	p.log.Info().Msg("✅ All workers stopped")
}

// Enqueue records a pending job for ownerUID and queues it.
func (p *Pool) Enqueue(ctx context.Context, ownerUID, filename string, pdf []byte, pageCount int) (*models.ExtractionJob, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return nil, ErrStopped
	}

	j := &models.ExtractionJob{
		OwnerUID:  ownerUID,
		Filename:  filename,
		Status:    models.JobPending,
		PageCount: pageCount,
	}
	if err := p.store.CreateJob(ctx, j); err != nil {
		return nil, err
	}

	// Go Pattern: `select` with `default` makes channel operations non-blocking.
	// Without default, sending to a full channel would block the HTTP handler.
	select {
	case p.jobs <- Job{ID: j.ID, PDF: pdf, Filename: filename, CreatedAt: j.CreatedAt}:
		p.log.Info().Str("job_id", j.ID).Str("uid", ownerUID).Msg("📥 Extraction queued")
		return j, nil
	default:
		j.Status = models.JobFailed
		j.FailureReason = ErrQueueFull.Error()
		if err := p.store.UpdateJob(ctx, j); err != nil {
			p.log.Warn().Err(err).Str("job_id", j.ID).Msg("failed to record rejected job")
		}
		return nil, ErrQueueFull
	}
}

// QueueSize returns the current number of jobs in the queue.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}

// WorkerCount returns the number of workers.
func (p *Pool) WorkerCount() int {
	return p.workers
}

// worker is the main loop for each worker goroutine.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	log := p.log.With().Int("worker", id).Logger()
	log.Debug().Msg("👷 Worker started")

	// Go Pattern: `range` over a channel reads values until the channel is closed.
	// After Stop, the remaining jobs are drained and marked failed.
	for job := range p.jobs {
		if p.ctx.Err() != nil {
			p.finish(job.ID, nil, errors.New("server shutting down"))
			continue
		}

		log.Info().Str("job_id", job.ID).Msg("👷 Processing extraction")
		if err := p.process(job); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("❌ Extraction job failed")
		} else {
			log.Info().Str("job_id", job.ID).Msg("✅ Extraction job completed")
		}
	}

	log.Debug().Msg("👷 Worker stopped")
}

func (p *Pool) process(job Job) error {
	// Every exit goes through finish so a job never stays pending
	j, err := p.store.GetJob(p.ctx, job.ID)
	if err != nil {
		p.finish(job.ID, nil, err)
		return err
	}
	j.Status = models.JobProcessing
	if err := p.store.UpdateJob(p.ctx, j); err != nil {
		p.finish(job.ID, nil, err)
		return err
	}

	paper, err := p.extractor.Extract(p.ctx, job.PDF, job.Filename)
	p.finish(job.ID, paper, err)
	return err
}

// finish records the outcome. It uses its own context so results are
// saved even while the pool is shutting down.
func (p *Pool) finish(jobID string, paper *models.ParsedPaper, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	j, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		p.log.Error().Err(err).Str("job_id", jobID).Msg("failed to load job")
		return
	}

	if cause != nil {
		j.Status = models.JobFailed
		j.FailureReason = failureReason(cause)
		j.Result = nil
	} else {
		j.Status = models.JobCompleted
		j.Result = paper
		j.FailureReason = ""
	}

	if err := p.store.UpdateJob(ctx, j); err != nil {
		p.log.Error().Err(err).Str("job_id", jobID).Msg("failed to save job result")
	}
}

// failureReason is the user-facing text stored on a failed job.
func failureReason(err error) string {
	var f *extraction.Failure
	switch {
	case errors.As(err, &f):
		return f.Error()
	case errors.Is(err, context.Canceled):
		return "Extraction cancelled"
	}
	if msg := apperrors.Message(err); msg != "" {
		return msg
	}
	return err.Error()
}
