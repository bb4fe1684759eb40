package interview

// ResultKind tags the variant of a TurnResult.
type ResultKind string

const (
	KindQuestion    ResultKind = "question"
	KindExplanation ResultKind = "explanation"
	KindClosing     ResultKind = "closing"
)

// TurnResult is the outcome of one processed turn. Exactly one variant is
// populated per kind: Text for questions and closings, Question+Explanation
// for explanations.
type TurnResult struct {
	Kind        ResultKind `json:"kind"`
	Text        string     `json:"text,omitempty"`
	Question    string     `json:"question,omitempty"`
	Explanation *string    `json:"explanation"`
}
