package interview

import (
	"context"
	"fmt"
	"strings"

	interviewModel "github.com/prepview/backend/internal/model/interview"
)

// ExplainMarker prefixes an utterance that asks for clarification of the last
// question instead of answering it. Matched case-sensitively.
const ExplainMarker = "//explain"

// ExplainTrailer must terminate every explanation so the frontend knows the
// interviewer is waiting for an acknowledgment before moving on.
const ExplainTrailer = "type //yes for next question"

// NoQuestionToExplain is the sentinel returned when no prior AI question
// exists. It is a normal outcome, not an error.
const NoQuestionToExplain = "There is no previous question to explain."

// ExplainHandler re-states the most recent question in plain language without
// advancing the interview.
type ExplainHandler struct {
	capability QuestionCapability
}

// NewExplainHandler wires the explain sub-protocol to its capability.
func NewExplainHandler(capability QuestionCapability) *ExplainHandler {
	return &ExplainHandler{capability: capability}
}

// Handle locates the last non-empty AI turn and produces an explanation for
// it. When that turn is the tail of the history it is popped first: an
// explanation request is not an answer, so the question must stay pending.
// QuestionsAsked is never touched here and no budget check is performed, so
// even the final question can be explained.
func (h *ExplainHandler) Handle(ctx context.Context, s *interviewModel.Session) (TurnResult, error) {
	idx := lastAITurn(s.History)
	if idx < 0 {
		return TurnResult{Kind: KindExplanation, Question: NoQuestionToExplain}, nil
	}

	question := s.History[idx].Content
	explanation, err := h.capability.Explain(ctx, question)
	if err != nil {
		return TurnResult{}, fmt.Errorf("%w: explain: %v", ErrCapability, err)
	}
	explanation = strings.TrimSpace(explanation)
	if !strings.HasSuffix(explanation, ExplainTrailer) {
		explanation += "\n\n" + ExplainTrailer
	}

	// Mutate only after the capability call succeeded, so a failed turn
	// leaves the session untouched.
	if idx == len(s.History)-1 {
		s.History = s.History[:idx]
	}

	return TurnResult{Kind: KindExplanation, Question: question, Explanation: &explanation}, nil
}

// lastAITurn scans from the tail for the most recent AI turn with content.
func lastAITurn(history []interviewModel.Turn) int {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == interviewModel.RoleAI && history[i].Content != "" {
			return i
		}
	}
	return -1
}
