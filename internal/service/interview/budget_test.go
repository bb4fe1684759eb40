package interview_test

import (
	"errors"
	"testing"

	interviewModel "github.com/prepview/backend/internal/model/interview"
	interview "github.com/prepview/backend/internal/service/interview"
)

func TestBudgetRemaining(t *testing.T) {
	budget := interview.Budget{Requested: 3, Asked: 1}

	if got := budget.Remaining(); got != 2 {
		t.Fatalf("expected remaining 2, got %d", got)
	}
	if budget.Exhausted() {
		t.Fatal("budget with remaining questions reported exhausted")
	}
}

func TestBudgetExhausted(t *testing.T) {
	budget := interview.Budget{Requested: 2, Asked: 2}

	if !budget.Exhausted() {
		t.Fatal("spent budget not reported exhausted")
	}
	if err := budget.Consume(); !errors.Is(err, interview.ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
	if budget.Asked != 2 {
		t.Fatalf("failed consume must not increment, got asked=%d", budget.Asked)
	}
}

func TestBudgetConsume(t *testing.T) {
	budget := interview.Budget{Requested: 1}

	if err := budget.Consume(); err != nil {
		t.Fatalf("Consume err: %v", err)
	}
	if budget.Asked != 1 {
		t.Fatalf("expected asked=1, got %d", budget.Asked)
	}
	if !budget.Exhausted() {
		t.Fatal("budget should be exhausted after the only question")
	}
}

func TestBudgetOf(t *testing.T) {
	session := interviewModel.Session{QuestionsRequested: 5, QuestionsAsked: 3}

	budget := interview.BudgetOf(session)
	if budget.Requested != 5 || budget.Asked != 3 {
		t.Fatalf("unexpected budget: %+v", budget)
	}
}
