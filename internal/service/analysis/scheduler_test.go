package analysis_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	interviewModel "github.com/prepview/backend/internal/model/interview"
	"github.com/prepview/backend/internal/service/analysis"
	interviewService "github.com/prepview/backend/internal/service/interview"
)

type fakeScorer struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeScorer) Score(_ context.Context, job interviewService.ScoringJob) (interviewModel.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return interviewModel.Report{}, f.err
	}
	return interviewModel.Report{
		SessionID:     job.SessionID,
		OverallRating: "good",
		Feedback: []interviewModel.QuestionFeedback{
			{Question: "Q1", Answer: "A1", Feedback: "clear answer", Rating: 7},
		},
	}, nil
}

func waitForReport(t *testing.T, reports interviewModel.ReportStore, sessionID string) interviewModel.Report {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		report, err := reports.LoadReport(context.Background(), sessionID)
		if err == nil {
			return report
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for report")
	return interviewModel.Report{}
}

func TestSchedulerProducesReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reports := interviewModel.NewMemoryReportStore()
	scheduler := analysis.NewScheduler(&fakeScorer{}, reports, 4, time.Second)
	scheduler.Start(ctx)

	job := interviewService.ScoringJob{
		SessionID: "s-1",
		History:   []interviewModel.Turn{{Role: interviewModel.RoleAI, Content: "Q1"}},
	}
	if err := scheduler.ScheduleScoring(job); err != nil {
		t.Fatalf("ScheduleScoring err: %v", err)
	}

	report := waitForReport(t, reports, "s-1")
	if report.OverallRating != "good" || len(report.Feedback) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestSchedulerSwallowsScoringFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scorer := &fakeScorer{err: errors.New("model down")}
	reports := interviewModel.NewMemoryReportStore()
	scheduler := analysis.NewScheduler(scorer, reports, 4, time.Second)
	scheduler.Start(ctx)

	if err := scheduler.ScheduleScoring(interviewService.ScoringJob{SessionID: "s-err"}); err != nil {
		t.Fatalf("ScheduleScoring err: %v", err)
	}

	// Give the worker time to fail; no report should ever land.
	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		scorer.mu.Lock()
		called := scorer.calls > 0
		scorer.mu.Unlock()
		if called {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := reports.LoadReport(context.Background(), "s-err"); !errors.Is(err, interviewModel.ErrNotFound) {
		t.Fatalf("failed scoring must not persist a report, got %v", err)
	}
}

func TestSchedulerQueueFull(t *testing.T) {
	// Worker never started, so the buffer is the only capacity.
	scheduler := analysis.NewScheduler(&fakeScorer{}, interviewModel.NewMemoryReportStore(), 1, time.Second)

	if err := scheduler.ScheduleScoring(interviewService.ScoringJob{SessionID: "s-1"}); err != nil {
		t.Fatalf("first job should fit: %v", err)
	}
	err := scheduler.ScheduleScoring(interviewService.ScoringJob{SessionID: "s-2"})
	if !errors.Is(err, analysis.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	scheduler := analysis.NewScheduler(&fakeScorer{}, interviewModel.NewMemoryReportStore(), 1, time.Second)
	scheduler.Start(ctx)

	cancel()
	done := make(chan struct{})
	go func() {
		scheduler.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
