package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	interviewModel "github.com/prepview/backend/internal/model/interview"
	interviewService "github.com/prepview/backend/internal/service/interview"
)

// ErrQueueFull is returned when the scoring queue cannot accept another job.
var ErrQueueFull = errors.New("analysis queue is full")

// Scorer produces a report from a finished interview transcript.
type Scorer interface {
	Score(ctx context.Context, job interviewService.ScoringJob) (interviewModel.Report, error)
}

// Scheduler runs interview scoring asynchronously. ScheduleScoring never
// blocks the interview turn: jobs land on a buffered queue and a background
// worker drains it. A failed scoring run is logged and dropped, never
// propagated back to the candidate.
type Scheduler struct {
	scorer  Scorer
	reports interviewModel.ReportStore
	jobs    chan interviewService.ScoringJob
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewScheduler builds a scheduler with the given queue capacity and per-job
// scoring timeout.
func NewScheduler(scorer Scorer, reports interviewModel.ReportStore, queueSize int, timeout time.Duration) *Scheduler {
	if queueSize < 1 {
		queueSize = 16
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Scheduler{
		scorer:  scorer,
		reports: reports,
		jobs:    make(chan interviewService.ScoringJob, queueSize),
		timeout: timeout,
	}
}

// Start launches the worker. It drains until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-s.jobs:
				s.process(ctx, job)
			}
		}
	}()
}

// Wait blocks until the worker has exited after cancellation.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// ScheduleScoring enqueues a job without blocking.
func (s *Scheduler) ScheduleScoring(job interviewService.ScoringJob) error {
	select {
	case s.jobs <- job:
		log.Printf("[analysis] scheduled scoring for session=%s turns=%d", job.SessionID, len(job.History))
		return nil
	default:
		return fmt.Errorf("%w: session=%s", ErrQueueFull, job.SessionID)
	}
}

func (s *Scheduler) process(ctx context.Context, job interviewService.ScoringJob) {
	scoreCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.scorer.Score(scoreCtx, job)
	if err != nil {
		log.Printf("[analysis] scoring failed for session=%s: %v", job.SessionID, err)
		return
	}

	if err := s.reports.SaveReport(ctx, report); err != nil {
		log.Printf("[analysis] failed to save report for session=%s: %v", job.SessionID, err)
		return
	}
	log.Printf("[analysis] report ready for session=%s", job.SessionID)
}
