package interview

import (
	"errors"

	interviewModel "github.com/prepview/backend/internal/model/interview"
)

// ErrBudgetExhausted is returned by Consume once every requested question has
// been asked.
var ErrBudgetExhausted = errors.New("question budget exhausted")

// Budget tracks how many questions have been asked against the amount the
// candidate requested at session creation.
type Budget struct {
	Requested int
	Asked     int
}

// BudgetOf reads the current budget out of a session.
func BudgetOf(s interviewModel.Session) Budget {
	return Budget{Requested: s.QuestionsRequested, Asked: s.QuestionsAsked}
}

// Remaining reports how many questions may still be asked.
func (b Budget) Remaining() int {
	return b.Requested - b.Asked
}

// Exhausted reports whether the next non-explain turn must close the session.
func (b Budget) Exhausted() bool {
	return b.Remaining() <= 0
}

// Consume accounts for one newly asked question.
func (b *Budget) Consume() error {
	if b.Exhausted() {
		return ErrBudgetExhausted
	}
	b.Asked++
	return nil
}
