// Package postgres provides durable implementations of the interview stores
// on PostgreSQL. The session store enforces the same version compare-and-swap
// contract as the in-memory store, but across processes.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	interviewModel "github.com/prepview/backend/internal/model/interview"
)

const schema = `
CREATE TABLE IF NOT EXISTS interview_sessions (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	resume_text TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL,
	experience_level TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL,
	questions_requested INT NOT NULL,
	questions_asked INT NOT NULL DEFAULT 0,
	history JSONB NOT NULL DEFAULT '[]',
	closed BOOLEAN NOT NULL DEFAULT FALSE,
	version INT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS interview_reports (
	session_id UUID PRIMARY KEY,
	feedback JSONB NOT NULL DEFAULT '[]',
	overall_rating TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the interview tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SessionStore implements interview.Store on PostgreSQL.
type SessionStore struct {
	db *sqlx.DB
}

// NewSessionStore creates a PostgreSQL session store.
func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

type sessionRow struct {
	ID                 string    `db:"id"`
	UserID             string    `db:"user_id"`
	ResumeText         string    `db:"resume_text"`
	Position           string    `db:"position"`
	ExperienceLevel    string    `db:"experience_level"`
	Mode               string    `db:"mode"`
	QuestionsRequested int       `db:"questions_requested"`
	QuestionsAsked     int       `db:"questions_asked"`
	History            []byte    `db:"history"`
	Closed             bool      `db:"closed"`
	Version            int       `db:"version"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

// Create inserts a fresh session at version 1.
func (s *SessionStore) Create(ctx context.Context, session interviewModel.Session) error {
	history, err := json.Marshal(session.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interview_sessions
			(id, user_id, resume_text, position, experience_level, mode,
			 questions_requested, questions_asked, history, closed, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
	`, session.ID, session.UserID, session.ResumeText, session.Position,
		session.ExperienceLevel, string(session.Mode),
		session.QuestionsRequested, session.QuestionsAsked, history, session.Closed)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return interviewModel.ErrAlreadyExists
	}
	return err
}

// Load retrieves a session by identifier.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (interviewModel.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, resume_text, position, experience_level, mode,
		       questions_requested, questions_asked, history, closed, version,
		       created_at, updated_at
		FROM interview_sessions
		WHERE id = $1
	`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return interviewModel.Session{}, interviewModel.ErrNotFound
	}
	if err != nil {
		return interviewModel.Session{}, err
	}

	var history []interviewModel.Turn
	if err := json.Unmarshal(row.History, &history); err != nil {
		return interviewModel.Session{}, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	return interviewModel.Session{
		ID:                 row.ID,
		UserID:             row.UserID,
		ResumeText:         row.ResumeText,
		Position:           row.Position,
		ExperienceLevel:    row.ExperienceLevel,
		Mode:               interviewModel.Mode(row.Mode),
		QuestionsRequested: row.QuestionsRequested,
		QuestionsAsked:     row.QuestionsAsked,
		History:            history,
		Closed:             row.Closed,
		Version:            row.Version,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}

// Save updates the mutable session fields iff the stored version still
// matches expectedVersion.
func (s *SessionStore) Save(ctx context.Context, session interviewModel.Session, expectedVersion int) error {
	history, err := json.Marshal(session.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE interview_sessions
		SET questions_asked = $3, history = $4, closed = $5,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`, session.ID, expectedVersion, session.QuestionsAsked, history, session.Closed)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Distinguish a stale version from a missing row.
	var exists bool
	if err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM interview_sessions WHERE id = $1)`, session.ID); err != nil {
		return err
	}
	if !exists {
		return interviewModel.ErrNotFound
	}
	return interviewModel.ErrVersionConflict
}

// ReportStore implements interview.ReportStore on PostgreSQL.
type ReportStore struct {
	db *sqlx.DB
}

// NewReportStore creates a PostgreSQL report store.
func NewReportStore(db *sqlx.DB) *ReportStore {
	return &ReportStore{db: db}
}

// SaveReport upserts the scoring report for a session.
func (s *ReportStore) SaveReport(ctx context.Context, report interviewModel.Report) error {
	feedback, err := json.Marshal(report.Feedback)
	if err != nil {
		return fmt.Errorf("failed to marshal feedback: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interview_reports (session_id, feedback, overall_rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id)
		DO UPDATE SET feedback = EXCLUDED.feedback,
		              overall_rating = EXCLUDED.overall_rating,
		              created_at = NOW()
	`, report.SessionID, feedback, report.OverallRating)
	return err
}

// LoadReport retrieves the scoring report for a session.
func (s *ReportStore) LoadReport(ctx context.Context, sessionID string) (interviewModel.Report, error) {
	var row struct {
		SessionID     string    `db:"session_id"`
		Feedback      []byte    `db:"feedback"`
		OverallRating string    `db:"overall_rating"`
		CreatedAt     time.Time `db:"created_at"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT session_id, feedback, overall_rating, created_at
		FROM interview_reports
		WHERE session_id = $1
	`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return interviewModel.Report{}, interviewModel.ErrNotFound
	}
	if err != nil {
		return interviewModel.Report{}, err
	}

	var feedback []interviewModel.QuestionFeedback
	if err := json.Unmarshal(row.Feedback, &feedback); err != nil {
		return interviewModel.Report{}, fmt.Errorf("failed to unmarshal feedback: %w", err)
	}

	return interviewModel.Report{
		SessionID:     row.SessionID,
		Feedback:      feedback,
		OverallRating: row.OverallRating,
		CreatedAt:     row.CreatedAt,
	}, nil
}
