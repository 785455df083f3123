package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

// Job is one schedulable unit of work. Delay postpones the first attempt;
// a failing job is re-run up to MaxRetries more times with RetryDelay
// between attempts, then dropped with an error log.
type Job struct {
	ID         string
	Name       string
	Delay      time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Run        func(ctx context.Context) error
}

// Queue is the submit-with-delay capability the scheduler fanout and the
// signal producer depend on. Submissions return immediately; execution is
// asynchronous and best-effort.
type Queue interface {
	Submit(ctx context.Context, job Job) error
}

// LocalQueue runs submitted jobs on in-process goroutines. Jobs for
// different symbols may run concurrently; nothing serializes jobs for the
// same symbol, which the pipeline's insert-or-ignore and keep-top-K prune
// are designed to tolerate.
type LocalQueue struct {
	wg sync.WaitGroup
}

func NewLocalQueue() *LocalQueue {
	return &LocalQueue{}
}

func (q *LocalQueue) Submit(ctx context.Context, job Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	logger.WithFields(logger.Fields{
		"job":   job.Name,
		"jobID": job.ID,
		"delay": job.Delay.String(),
	}).Debug("Job submitted")

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.execute(ctx, job)
	}()

	return nil
}

// Wait blocks until every submitted job has finished. Used on shutdown and
// in tests.
func (q *LocalQueue) Wait() {
	q.wg.Wait()
}

func (q *LocalQueue) execute(ctx context.Context, job Job) {
	if job.Delay > 0 {
		if !sleepCtx(ctx, job.Delay) {
			logger.WithField("job", job.Name).Info("Job cancelled before start")
			return
		}
	}

	for attempt := 0; ; attempt++ {
		err := job.Run(ctx)
		if err == nil {
			logger.WithFields(logger.Fields{
				"job":     job.Name,
				"jobID":   job.ID,
				"attempt": attempt + 1,
			}).Debug("Job finished")
			return
		}

		if attempt >= job.MaxRetries {
			logger.WithError(err).WithFields(logger.Fields{
				"job":      job.Name,
				"jobID":    job.ID,
				"attempts": attempt + 1,
			}).Error("Job failed, giving up")
			return
		}

		logger.WithError(err).WithFields(logger.Fields{
			"job":     job.Name,
			"jobID":   job.ID,
			"attempt": attempt + 1,
		}).Warn("Job failed, will retry")

		if !sleepCtx(ctx, job.RetryDelay) {
			logger.WithField("job", job.Name).Info("Job cancelled during retry wait")
			return
		}
	}
}

// sleepCtx waits for d or until ctx is done; returns false when cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
