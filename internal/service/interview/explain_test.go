package interview_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	interviewModel "github.com/prepview/backend/internal/model/interview"
	interview "github.com/prepview/backend/internal/service/interview"
)

func sessionWithHistory(turns ...interviewModel.Turn) interviewModel.Session {
	return interviewModel.Session{
		ID:                 "s-1",
		UserID:             "user-1",
		QuestionsRequested: 3,
		QuestionsAsked:     1,
		History:            turns,
	}
}

func TestExplainPopsTrailingQuestion(t *testing.T) {
	handler := interview.NewExplainHandler(&fakeCapability{})
	session := sessionWithHistory(
		interviewModel.Turn{Role: interviewModel.RoleAI, Content: "Q1"},
		interviewModel.Turn{Role: interviewModel.RoleUser, Content: "A1"},
		interviewModel.Turn{Role: interviewModel.RoleAI, Content: "Q2"},
	)

	result, err := handler.Handle(context.Background(), &session)
	if err != nil {
		t.Fatalf("Handle err: %v", err)
	}

	if result.Kind != interview.KindExplanation {
		t.Fatalf("expected explanation kind, got %s", result.Kind)
	}
	if result.Question != "Q2" {
		t.Fatalf("expected Q2 explained, got %q", result.Question)
	}
	if result.Explanation == nil {
		t.Fatal("expected non-nil explanation")
	}
	// Q2 stays pending: the explain request is not an answer.
	if len(session.History) != 2 {
		t.Fatalf("expected trailing question popped, history=%d", len(session.History))
	}
	if session.QuestionsAsked != 1 {
		t.Fatalf("explain must not touch questionsAsked, got %d", session.QuestionsAsked)
	}
}

func TestExplainLeavesAnsweredQuestionInPlace(t *testing.T) {
	handler := interview.NewExplainHandler(&fakeCapability{})
	session := sessionWithHistory(
		interviewModel.Turn{Role: interviewModel.RoleAI, Content: "Q1"},
		interviewModel.Turn{Role: interviewModel.RoleUser, Content: "A1"},
	)

	result, err := handler.Handle(context.Background(), &session)
	if err != nil {
		t.Fatalf("Handle err: %v", err)
	}

	if result.Question != "Q1" {
		t.Fatalf("expected Q1 explained, got %q", result.Question)
	}
	if len(session.History) != 2 {
		t.Fatalf("history with answered question must stay intact, got %d entries", len(session.History))
	}
}

func TestExplainWithNoPriorQuestion(t *testing.T) {
	handler := interview.NewExplainHandler(&fakeCapability{})
	session := sessionWithHistory()

	result, err := handler.Handle(context.Background(), &session)
	if err != nil {
		t.Fatalf("Handle err: %v", err)
	}

	if result.Question != interview.NoQuestionToExplain {
		t.Fatalf("expected sentinel question, got %q", result.Question)
	}
	if result.Explanation != nil {
		t.Fatalf("expected nil explanation, got %q", *result.Explanation)
	}
	if len(session.History) != 0 {
		t.Fatal("sentinel path must not mutate history")
	}
}

func TestExplainSkipsEmptyAITurns(t *testing.T) {
	handler := interview.NewExplainHandler(&fakeCapability{})
	session := sessionWithHistory(
		interviewModel.Turn{Role: interviewModel.RoleAI, Content: "Q1"},
		interviewModel.Turn{Role: interviewModel.RoleUser, Content: "A1"},
		interviewModel.Turn{Role: interviewModel.RoleAI, Content: ""},
	)

	result, err := handler.Handle(context.Background(), &session)
	if err != nil {
		t.Fatalf("Handle err: %v", err)
	}
	if result.Question != "Q1" {
		t.Fatalf("expected Q1 (last non-empty AI turn), got %q", result.Question)
	}
}

func TestExplainAppendsTrailerWhenMissing(t *testing.T) {
	capability := &fakeCapability{explanation: "It means: describe your experience."}
	handler := interview.NewExplainHandler(capability)
	session := sessionWithHistory(interviewModel.Turn{Role: interviewModel.RoleAI, Content: "Q1"})

	result, err := handler.Handle(context.Background(), &session)
	if err != nil {
		t.Fatalf("Handle err: %v", err)
	}
	if !strings.HasSuffix(*result.Explanation, interview.ExplainTrailer) {
		t.Fatalf("explanation missing trailer: %q", *result.Explanation)
	}
}

func TestExplainCapabilityFailureLeavesHistory(t *testing.T) {
	capability := &fakeCapability{explainErr: errors.New("model timeout")}
	handler := interview.NewExplainHandler(capability)
	session := sessionWithHistory(interviewModel.Turn{Role: interviewModel.RoleAI, Content: "Q1"})

	_, err := handler.Handle(context.Background(), &session)
	if !errors.Is(err, interview.ErrCapability) {
		t.Fatalf("expected ErrCapability, got %v", err)
	}
	if len(session.History) != 1 {
		t.Fatal("failed explain must not pop the pending question")
	}
}
