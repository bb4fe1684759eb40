package interview_test

import (
	"context"
	"fmt"
	"sync"

	interviewModel "github.com/prepview/backend/internal/model/interview"
	interview "github.com/prepview/backend/internal/service/interview"
)

// fakeCapability is a deterministic stand-in for the LLM-backed capability.
type fakeCapability struct {
	mu          sync.Mutex
	askCalls    int
	askErr      error
	explainErr  error
	closeErr    error
	explanation string
	closing     string
}

func (f *fakeCapability) AskNext(_ context.Context, in interview.NextQuestionInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.askErr != nil {
		return "", f.askErr
	}
	f.askCalls++
	return fmt.Sprintf("Q%d: question for a %s?", f.askCalls, in.Position), nil
}

func (f *fakeCapability) Explain(_ context.Context, questionText string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.explainErr != nil {
		return "", f.explainErr
	}
	if f.explanation != "" {
		return f.explanation, nil
	}
	return "In plain terms: " + questionText + "\n\n" + interview.ExplainTrailer, nil
}

func (f *fakeCapability) Close(_ context.Context, _ []interviewModel.Turn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closeErr != nil {
		return "", f.closeErr
	}
	if f.closing != "" {
		return f.closing, nil
	}
	return interview.ClosingOpening + " Thank you for taking the time to speak with me today. " +
		interview.ClosingTrailer, nil
}

func (f *fakeCapability) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.askCalls
}

// fakeScheduler records scheduled scoring jobs.
type fakeScheduler struct {
	mu   sync.Mutex
	jobs []interview.ScoringJob
	err  error
}

func (f *fakeScheduler) ScheduleScoring(job interview.ScoringJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeScheduler) scheduled() []interview.ScoringJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interview.ScoringJob(nil), f.jobs...)
}

// conflictingStore wraps a store and fails the first n saves with a version
// conflict, simulating a competing writer.
type conflictingStore struct {
	interviewModel.Store
	mu        sync.Mutex
	conflicts int
}

func (s *conflictingStore) Save(ctx context.Context, session interviewModel.Session, expectedVersion int) error {
	s.mu.Lock()
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return interviewModel.ErrVersionConflict
	}
	s.mu.Unlock()
	return s.Store.Save(ctx, session, expectedVersion)
}

func newTestOrchestrator(capability *fakeCapability, scheduler *fakeScheduler) (*interview.Orchestrator, *interviewModel.MemoryStore, *interviewModel.MemoryReportStore) {
	store := interviewModel.NewMemoryStore()
	reports := interviewModel.NewMemoryReportStore()
	orchestrator := interview.NewOrchestrator(store, reports, capability, scheduler)
	return orchestrator, store, reports
}

func createTestSession(orchestrator *interview.Orchestrator, requested int) (interviewModel.Session, error) {
	return orchestrator.CreateSession(context.Background(), interview.CreateSessionInput{
		UserID:             "user-1",
		ResumeText:         "Five years of Go and distributed systems.",
		Position:           "Backend Engineer",
		ExperienceLevel:    "senior",
		Mode:               interviewModel.ModeGuided,
		QuestionsRequested: requested,
	})
}
