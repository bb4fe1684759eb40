package interview

import (
	"context"

	interviewModel "github.com/prepview/backend/internal/model/interview"
)

// NextQuestionInput carries everything the question generator may look at.
type NextQuestionInput struct {
	ResumeText      string
	Position        string
	ExperienceLevel string
	Remaining       int
	History         []interviewModel.Turn
	Mode            interviewModel.Mode
}

// QuestionCapability abstracts the LLM calls the turn protocol depends on.
// Implementations may fail or time out; callers treat every call as a
// suspension point and never persist partial results on error.
type QuestionCapability interface {
	AskNext(ctx context.Context, in NextQuestionInput) (string, error)
	Explain(ctx context.Context, questionText string) (string, error)
	Close(ctx context.Context, history []interviewModel.Turn) (string, error)
}

// ScoringJob is the unit of work handed to the analysis pipeline when an
// interview closes.
type ScoringJob struct {
	SessionID       string
	History         []interviewModel.Turn
	ResumeText      string
	Position        string
	ExperienceLevel string
}

// AnalysisScheduler accepts scoring jobs without blocking. Enqueue failures
// are logged by the caller and never surfaced to the interview candidate.
type AnalysisScheduler interface {
	ScheduleScoring(job ScoringJob) error
}
