package interview

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	interviewModel "github.com/prepview/backend/internal/model/interview"
)

// saveAttempts bounds optimistic-concurrency retries before the turn fails
// with ErrConflict.
const saveAttempts = 3

// DefaultMaxQuestions caps how many questions a single session may request.
const DefaultMaxQuestions = 20

// Orchestrator is the single entry point for interview turns. It loads the
// session, runs the turn protocol and persists the outcome atomically: either
// the full turn commits, or the stored session is untouched.
type Orchestrator struct {
	store        interviewModel.Store
	reports      interviewModel.ReportStore
	protocol     *Protocol
	locks        *keyedMutex
	maxQuestions int
}

// NewOrchestrator wires the orchestrator to its store and capabilities.
func NewOrchestrator(store interviewModel.Store, reports interviewModel.ReportStore, capability QuestionCapability, scheduler AnalysisScheduler) *Orchestrator {
	return &Orchestrator{
		store:        store,
		reports:      reports,
		protocol:     NewProtocol(capability, scheduler),
		locks:        newKeyedMutex(),
		maxQuestions: DefaultMaxQuestions,
	}
}

// CreateSessionInput carries the immutable configuration of a new interview.
type CreateSessionInput struct {
	UserID             string
	ResumeText         string
	Position           string
	ExperienceLevel    string
	Mode               interviewModel.Mode
	QuestionsRequested int
}

// CreateSession provisions a fresh interview session for the user.
func (o *Orchestrator) CreateSession(ctx context.Context, in CreateSessionInput) (interviewModel.Session, error) {
	if in.UserID == "" {
		return interviewModel.Session{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(in.Position) == "" {
		return interviewModel.Session{}, fmt.Errorf("%w: position is required", ErrValidation)
	}
	if in.QuestionsRequested < 1 || in.QuestionsRequested > o.maxQuestions {
		return interviewModel.Session{}, fmt.Errorf("%w: questionsRequested must be between 1 and %d", ErrValidation, o.maxQuestions)
	}
	if in.Mode == "" {
		in.Mode = interviewModel.ModeGuided
	}
	if !interviewModel.ValidMode(in.Mode) {
		return interviewModel.Session{}, fmt.Errorf("%w: unknown interview mode %q", ErrValidation, in.Mode)
	}

	session := interviewModel.Session{
		ID:                 uuid.NewString(),
		UserID:             in.UserID,
		ResumeText:         in.ResumeText,
		Position:           in.Position,
		ExperienceLevel:    in.ExperienceLevel,
		Mode:               in.Mode,
		QuestionsRequested: in.QuestionsRequested,
		History:            make([]interviewModel.Turn, 0, 2*in.QuestionsRequested),
	}
	if err := o.store.Create(ctx, session); err != nil {
		return interviewModel.Session{}, fmt.Errorf("create session: %w", err)
	}
	session.Version = 1

	log.Printf("[interview] created session=%s user=%s questions=%d mode=%s",
		session.ID, session.UserID, session.QuestionsRequested, session.Mode)
	return session, nil
}

// ProcessTurn runs one interview turn. Turns for the same session are
// serialized in-process; an optimistic version check on save guards against
// writers elsewhere, retried from a fresh load up to saveAttempts times.
func (o *Orchestrator) ProcessTurn(ctx context.Context, sessionID, userID, utterance string) (TurnResult, error) {
	if strings.TrimSpace(utterance) == "" {
		return TurnResult{}, fmt.Errorf("%w: utterance is empty", ErrValidation)
	}
	if userID == "" {
		return TurnResult{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return TurnResult{}, fmt.Errorf("%w: malformed session id", ErrValidation)
	}

	unlock := o.locks.Lock(sessionID)
	defer unlock()

	for attempt := 1; attempt <= saveAttempts; attempt++ {
		session, err := o.store.Load(ctx, sessionID)
		if errors.Is(err, interviewModel.ErrNotFound) {
			return TurnResult{}, ErrSessionNotFound
		}
		if err != nil {
			return TurnResult{}, fmt.Errorf("load session: %w", err)
		}
		if session.UserID != userID {
			return TurnResult{}, ErrForbidden
		}
		if session.Closed {
			return TurnResult{}, ErrSessionClosed
		}

		loadedVersion := session.Version
		result, commit, err := o.protocol.Execute(ctx, &session, utterance)
		if err != nil {
			return TurnResult{}, err
		}

		err = o.store.Save(ctx, session, loadedVersion)
		if errors.Is(err, interviewModel.ErrVersionConflict) {
			log.Printf("[interview] version conflict on session=%s attempt=%d, retrying", sessionID, attempt)
			continue
		}
		if err != nil {
			return TurnResult{}, fmt.Errorf("save session: %w", err)
		}
		if commit != nil {
			commit()
		}
		return result, nil
	}

	return TurnResult{}, ErrConflict
}

// Report returns the scoring report for a finished interview, enforcing the
// same ownership rule as turns.
func (o *Orchestrator) Report(ctx context.Context, sessionID, userID string) (interviewModel.Report, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return interviewModel.Report{}, fmt.Errorf("%w: malformed session id", ErrValidation)
	}

	session, err := o.store.Load(ctx, sessionID)
	if errors.Is(err, interviewModel.ErrNotFound) {
		return interviewModel.Report{}, ErrSessionNotFound
	}
	if err != nil {
		return interviewModel.Report{}, fmt.Errorf("load session: %w", err)
	}
	if session.UserID != userID {
		return interviewModel.Report{}, ErrForbidden
	}

	report, err := o.reports.LoadReport(ctx, sessionID)
	if errors.Is(err, interviewModel.ErrNotFound) {
		return interviewModel.Report{}, ErrSessionNotFound
	}
	if err != nil {
		return interviewModel.Report{}, fmt.Errorf("load report: %w", err)
	}
	return report, nil
}
