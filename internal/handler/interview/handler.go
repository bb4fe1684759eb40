package interview

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	interviewModel "github.com/prepview/backend/internal/model/interview"
	interviewService "github.com/prepview/backend/internal/service/interview"
	"github.com/prepview/backend/pkg/utils"
)

// Handler exposes the interview orchestrator over HTTP. Authentication is
// handled upstream; the gateway forwards the authenticated user in X-User-ID.
type Handler struct {
	orchestrator *interviewService.Orchestrator
}

// New creates the interview handler.
func New(orchestrator *interviewService.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// RegisterRoutes mounts the interview endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Post("/turn", h.handleTurn)
	r.Get("/{sessionID}/report", h.handleReport)
	r.Get("/{sessionID}/stream", h.handleTurnStream)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		utils.RespondErrorCode(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	var payload struct {
		ResumeText         string `json:"resumeText"`
		Position           string `json:"position"`
		ExperienceLevel    string `json:"experienceLevel"`
		Mode               string `json:"mode"`
		QuestionsRequested int    `json:"questionsRequested"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondErrorCode(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	session, err := h.orchestrator.CreateSession(r.Context(), interviewService.CreateSessionInput{
		UserID:             userID,
		ResumeText:         payload.ResumeText,
		Position:           payload.Position,
		ExperienceLevel:    payload.ExperienceLevel,
		Mode:               interviewModel.Mode(payload.Mode),
		QuestionsRequested: payload.QuestionsRequested,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"sessionId":          session.ID,
		"questionsRequested": session.QuestionsRequested,
		"mode":               session.Mode,
		"createdAt":          session.CreatedAt,
	})
}

func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		utils.RespondErrorCode(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	var payload struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondErrorCode(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	result, err := h.orchestrator.ProcessTurn(r.Context(), payload.SessionID, userID, payload.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		utils.RespondErrorCode(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	report, err := h.orchestrator.Report(r.Context(), chi.URLParam(r, "sessionID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, report)
}

// handleTurnStream runs a single turn and delivers the result over SSE so the
// frontend can keep one streaming codepath for chat and voice surfaces.
func (h *Handler) handleTurnStream(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}
	if userID == "" {
		utils.RespondErrorCode(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	message := r.URL.Query().Get("message")
	if message == "" {
		utils.RespondErrorCode(w, http.StatusBadRequest, "validation_error", "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "status", map[string]string{"message": "processing turn"})

	result, err := h.orchestrator.ProcessTurn(r.Context(), chi.URLParam(r, "sessionID"), userID, message)
	if err != nil {
		utils.SendSSEEvent(w, flusher, "error", map[string]string{
			"code":  errorCode(err),
			"error": err.Error(),
		})
		return
	}

	utils.SendSSEEvent(w, flusher, "result", result)
	utils.SendSSEEvent(w, flusher, "done", map[string]bool{"finished": true})
}

// writeError maps the core error taxonomy to stable HTTP codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interviewService.ErrValidation):
		utils.RespondErrorCode(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, interviewService.ErrSessionNotFound):
		utils.RespondErrorCode(w, http.StatusNotFound, "not_found", interviewService.ErrSessionNotFound.Error())
	case errors.Is(err, interviewService.ErrForbidden):
		utils.RespondErrorCode(w, http.StatusForbidden, "forbidden", interviewService.ErrForbidden.Error())
	case errors.Is(err, interviewService.ErrSessionClosed):
		utils.RespondErrorCode(w, http.StatusConflict, "session_closed", interviewService.ErrSessionClosed.Error())
	case errors.Is(err, interviewService.ErrConflict):
		utils.RespondErrorCode(w, http.StatusConflict, "conflict", interviewService.ErrConflict.Error())
	case errors.Is(err, interviewService.ErrCapability):
		utils.RespondErrorCode(w, http.StatusBadGateway, "capability_error", "interview service temporarily unavailable")
	default:
		utils.RespondErrorCode(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, interviewService.ErrValidation):
		return "validation_error"
	case errors.Is(err, interviewService.ErrSessionNotFound):
		return "not_found"
	case errors.Is(err, interviewService.ErrForbidden):
		return "forbidden"
	case errors.Is(err, interviewService.ErrSessionClosed):
		return "session_closed"
	case errors.Is(err, interviewService.ErrConflict):
		return "conflict"
	case errors.Is(err, interviewService.ErrCapability):
		return "capability_error"
	default:
		return "internal_error"
	}
}
