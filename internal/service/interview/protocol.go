package interview

import (
	"context"
	"fmt"
	"strings"

	interviewModel "github.com/prepview/backend/internal/model/interview"
)

// Protocol decides, per incoming turn, which of three branches runs. Branch
// priority is strict and exactly one branch fires per call:
//
//  1. explain  — the utterance starts with the //explain marker
//  2. closure  — the question budget is exhausted
//  3. question — default: record the answer, ask the next question
//
// Explain outranks closure so the candidate can ask to have the final
// question explained before the interview ends.
type Protocol struct {
	capability QuestionCapability
	explain    *ExplainHandler
	closure    *ClosureHandler
}

// NewProtocol composes the turn protocol from its sub-handlers.
func NewProtocol(capability QuestionCapability, scheduler AnalysisScheduler) *Protocol {
	return &Protocol{
		capability: capability,
		explain:    NewExplainHandler(capability),
		closure:    NewClosureHandler(capability, scheduler),
	}
}

// Execute runs exactly one branch against the session, mutating it in place.
// The caller owns persistence; on error the session must be discarded. A
// non-nil commit hook carries side effects that must run only after the turn
// has been persisted.
func (p *Protocol) Execute(ctx context.Context, s *interviewModel.Session, utterance string) (TurnResult, func(), error) {
	switch {
	case strings.HasPrefix(utterance, ExplainMarker):
		result, err := p.explain.Handle(ctx, s)
		return result, nil, err
	case BudgetOf(*s).Exhausted():
		return p.closure.Handle(ctx, s, utterance)
	default:
		result, err := p.askNext(ctx, s, utterance)
		return result, nil, err
	}
}

// askNext records the utterance as an answer (except for the session-start
// trigger, which only seeds the first question), asks the capability for the
// next question and accounts for it against the budget.
func (p *Protocol) askNext(ctx context.Context, s *interviewModel.Session, utterance string) (TurnResult, error) {
	history := append([]interviewModel.Turn(nil), s.History...)
	if utterance != interviewModel.StartTrigger {
		history = append(history, interviewModel.Turn{Role: interviewModel.RoleUser, Content: utterance})
	}

	budget := BudgetOf(*s)
	question, err := p.capability.AskNext(ctx, NextQuestionInput{
		ResumeText:      s.ResumeText,
		Position:        s.Position,
		ExperienceLevel: s.ExperienceLevel,
		Remaining:       budget.Remaining(),
		History:         history,
		Mode:            s.Mode,
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("%w: ask next question: %v", ErrCapability, err)
	}
	if err := budget.Consume(); err != nil {
		return TurnResult{}, err
	}

	s.History = append(history, interviewModel.Turn{Role: interviewModel.RoleAI, Content: question})
	s.QuestionsAsked = budget.Asked

	return TurnResult{Kind: KindQuestion, Text: question}, nil
}
