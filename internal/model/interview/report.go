package interview

import (
	"context"
	"sync"
	"time"
)

// QuestionFeedback scores a single question/answer pair.
type QuestionFeedback struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
	Rating   int    `json:"rating"`
}

// Report is the outcome of the asynchronous scoring pass over a finished
// interview transcript.
type Report struct {
	SessionID     string             `json:"sessionId"`
	Feedback      []QuestionFeedback `json:"feedback"`
	OverallRating string             `json:"overallRating"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// ReportStore persists scoring reports keyed by session.
type ReportStore interface {
	SaveReport(ctx context.Context, report Report) error
	LoadReport(ctx context.Context, sessionID string) (Report, error)
}

// MemoryReportStore keeps reports in memory.
type MemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string]Report
}

// NewMemoryReportStore bootstraps an empty in-memory report store.
func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{reports: make(map[string]Report)}
}

// SaveReport stores the report, overwriting any previous run.
func (s *MemoryReportStore) SaveReport(_ context.Context, report Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	s.reports[report.SessionID] = report
	return nil
}

// LoadReport retrieves the report for a session.
func (s *MemoryReportStore) LoadReport(_ context.Context, sessionID string) (Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[sessionID]
	if !ok {
		return Report{}, ErrNotFound
	}
	return report, nil
}
