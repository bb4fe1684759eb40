package interview

import "time"

// Role identifies the speaker of a transcript turn.
type Role string

const (
	RoleAI   Role = "ai"
	RoleUser Role = "user"
)

// Mode selects the interviewer's questioning style. It shapes prompts only;
// the turn protocol never branches on it.
type Mode string

const (
	ModeGuided Mode = "guided"
	ModeHard   Mode = "hard"
)

// StartTrigger is the literal first utterance the frontend sends to open an
// interview. It seeds the first question and is never persisted as an answer.
const StartTrigger = "Let's start the interview"

// Turn is a single transcript entry.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session captures one interview attempt.
type Session struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	ResumeText         string    `json:"resumeText"`
	Position           string    `json:"position"`
	ExperienceLevel    string    `json:"experienceLevel"`
	Mode               Mode      `json:"mode"`
	QuestionsRequested int       `json:"questionsRequested"`
	QuestionsAsked     int       `json:"questionsAsked"`
	History            []Turn    `json:"history"`
	Closed             bool      `json:"closed"`
	Version            int       `json:"version"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can mutate freely before saving.
func (s Session) Clone() Session {
	out := s
	out.History = append([]Turn(nil), s.History...)
	return out
}

// ValidMode reports whether m is a recognized interview mode.
func ValidMode(m Mode) bool {
	return m == ModeGuided || m == ModeHard
}
