package jobs

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/videoedit/ai-edit-api/apierrors"
	"github.com/videoedit/ai-edit-api/cache"
	"github.com/videoedit/ai-edit-api/config"
	"github.com/videoedit/ai-edit-api/log"
)

// Runner dispatches named tasks to registered Handlers, tracking
// in-flight jobs in an in-memory cache (mirroring the upload-job
// coordinator's cache.Cache[*JobInfo]) while persisting the
// authoritative Job record to Store at every phase transition.
type Runner struct {
	Store      Store
	InFlight   *cache.Cache[*Job]
	RetryDelay time.Duration

	mu       sync.Mutex
	handlers map[string]Handler
	sem      chan struct{}
}

func NewRunner(store Store) *Runner {
	return &Runner{
		Store:      store,
		InFlight:   cache.New[*Job](),
		RetryDelay: config.DefaultJobRetryDelay,
		handlers:   make(map[string]Handler),
	}
}

// WithConcurrency bounds the number of jobs run simultaneously to n,
// mirroring the buffered-channel semaphore the frame captioner uses
// to bound config.FrameCaptionConcurrency. Call once before the first
// Enqueue; a zero or negative n leaves the runner unbounded.
func (r *Runner) WithConcurrency(n int) *Runner {
	if n > 0 {
		r.sem = make(chan struct{}, n)
	}
	return r
}

// Register associates a task kind with the handler that executes it.
func (r *Runner) Register(kind string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = handler
}

// Enqueue persists a new queued Job and starts it asynchronously. The
// returned Job reflects the initial queued state, not the eventual
// outcome — callers poll Store.Get (or the HTTP job-status endpoint)
// for completion.
func (r *Runner) Enqueue(ctx context.Context, id, kind string, input []byte, maxRetries int) (*Job, error) {
	r.mu.Lock()
	handler, ok := r.handlers[kind]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no handler registered for job kind %q", kind)
	}

	if maxRetries <= 0 {
		maxRetries = config.DefaultJobMaxRetries
	}
	now := config.Clock.GetTime()
	job := &Job{
		ID:         id,
		Kind:       kind,
		Input:      input,
		Status:     StatusQueued,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.Store.Create(job); err != nil {
		return nil, fmt.Errorf("creating job %s: %w", id, err)
	}
	r.InFlight.Store(job.ID, job)

	go recovered(func() (struct{}, error) {
		r.run(ctx, job, handler)
		return struct{}{}, nil
	})

	return job, nil
}

// run drives one job through its retry loop. The handler runs at most
// job.MaxRetries times in all, with a fixed delay between attempts;
// an unretriable error or a failure on the last attempt transitions
// the job to failed with a truncated error string, per spec.md §4.12.
func (r *Runner) run(ctx context.Context, job *Job, handler Handler) {
	if r.sem != nil {
		r.sem <- struct{}{}
		defer func() { <-r.sem }()
	}
	for {
		job.Status = StatusRunning
		job.UpdatedAt = config.Clock.GetTime()
		r.persist(job)

		_, err := recovered(func() (struct{}, error) {
			return struct{}{}, handler(ctx, job)
		})
		if err == nil {
			job.Status = StatusCompleted
			job.UpdatedAt = config.Clock.GetTime()
			r.persist(job)
			r.InFlight.Remove(job.ID)
			return
		}

		job.Attempts++
		if apierrors.IsUnretriable(err) {
			job.Status = StatusFailed
			job.Error = truncateError(err, config.JobErrorTruncateLength)
			job.UpdatedAt = config.Clock.GetTime()
			r.persist(job)
			r.InFlight.Remove(job.ID)
			log.LogNoRequestID("job failed with unretriable error, not retrying", "job_id", job.ID, "kind", job.Kind, "err", err)
			return
		}

		if job.Attempts >= job.MaxRetries {
			job.Status = StatusFailed
			job.Error = truncateError(err, config.JobErrorTruncateLength)
			job.UpdatedAt = config.Clock.GetTime()
			r.persist(job)
			r.InFlight.Remove(job.ID)
			log.LogNoRequestID("job failed after exhausting retries", "job_id", job.ID, "kind", job.Kind, "err", err)
			return
		}

		log.LogNoRequestID("job attempt failed, retrying", "job_id", job.ID, "kind", job.Kind, "attempt", job.Attempts, "err", err)
		time.Sleep(r.RetryDelay)
	}
}

func (r *Runner) persist(job *Job) {
	if err := r.Store.Update(job); err != nil {
		log.LogNoRequestID("failed to persist job state", "job_id", job.ID, "err", err)
	}
}

func truncateError(err error, maxLen int) string {
	s := err.Error()
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// recovered runs f, converting any panic into an error so a single
// crashing handler cannot take down the runner's goroutine.
func recovered[T any](f func() (T, error)) (t T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.LogNoRequestID("panic in job handler goroutine, recovering", "err", rec, "trace", string(debug.Stack()))
			err = fmt.Errorf("panic in job handler: %v", rec)
		}
	}()
	return f()
}
