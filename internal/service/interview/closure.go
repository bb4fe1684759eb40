package interview

import (
	"context"
	"fmt"
	"log"
	"strings"

	interviewModel "github.com/prepview/backend/internal/model/interview"
)

// The frontend string-matches on these phrases to detect the end of the
// interview, so they are a hard contract rather than prompt copy.
const (
	ClosingOpening = "Your interview is over."
	ClosingTrailer = "You can see the detail analysis of this interview in your profile in some time."
)

// ClosureHandler ends an interview whose question budget is exhausted: it
// records the candidate's final answer, produces the closing statement, marks
// the session terminal and hands the transcript to the analysis pipeline.
type ClosureHandler struct {
	capability QuestionCapability
	scheduler  AnalysisScheduler
}

// NewClosureHandler wires the closure sub-protocol to its collaborators.
func NewClosureHandler(capability QuestionCapability, scheduler AnalysisScheduler) *ClosureHandler {
	return &ClosureHandler{capability: capability, scheduler: scheduler}
}

// Handle produces the closing turn. The incoming utterance is the candidate's
// final answer and is recorded before the session closes. The returned commit
// hook schedules the scoring pass fire-and-forget; the caller runs it only
// after the turn has been persisted, so a retried save cannot enqueue the
// same transcript twice. Enqueue failures are logged, never surfaced.
func (h *ClosureHandler) Handle(ctx context.Context, s *interviewModel.Session, utterance string) (TurnResult, func(), error) {
	history := append(append([]interviewModel.Turn(nil), s.History...),
		interviewModel.Turn{Role: interviewModel.RoleUser, Content: utterance})

	text, err := h.capability.Close(ctx, history)
	if err != nil {
		return TurnResult{}, nil, fmt.Errorf("%w: close: %v", ErrCapability, err)
	}
	text = enforceClosingPhrases(text)

	s.History = history
	s.Closed = true

	job := ScoringJob{
		SessionID:       s.ID,
		History:         append([]interviewModel.Turn(nil), s.History...),
		ResumeText:      s.ResumeText,
		Position:        s.Position,
		ExperienceLevel: s.ExperienceLevel,
	}
	commit := func() {
		if err := h.scheduler.ScheduleScoring(job); err != nil {
			log.Printf("[interview] failed to schedule scoring for session=%s: %v", job.SessionID, err)
		}
	}

	return TurnResult{Kind: KindClosing, Text: text}, commit, nil
}

// enforceClosingPhrases guarantees the opening and trailing phrases even when
// the model drifts from its instructions.
func enforceClosingPhrases(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "Thank you for your time today."
	}
	if !strings.HasPrefix(text, ClosingOpening) {
		text = ClosingOpening + " " + text
	}
	if !strings.HasSuffix(text, ClosingTrailer) {
		text = strings.TrimRight(text, " \n") + " " + ClosingTrailer
	}
	return text
}
