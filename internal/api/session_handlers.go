package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/graduate-survey/internal/catalog"
	"github.com/terra-clan/graduate-survey/internal/models"
	"github.com/terra-clan/graduate-survey/internal/sessions"
	"github.com/terra-clan/graduate-survey/internal/survey"
)

// --- Respondent session handlers (public) ---

type createSessionRequest struct {
	Language string `json:"language"`
}

type setAnswerRequest struct {
	Value models.Answer `json:"value"`
}

type jumpRequest struct {
	Section string `json:"section"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Language == "" {
		req.Language = s.deps.DefaultLanguage
	}

	view, err := s.deps.Sessions.Create(r.Context(), req.Language)
	if err != nil {
		respondSessionError(w, nil, err)
		return
	}

	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondSessionError(w, nil, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Sessions.Delete(r.Context(), id); err != nil {
		respondSessionError(w, nil, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "session deleted",
		"id":      id,
	})
}

func (s *Server) handleSetAnswer(w http.ResponseWriter, r *http.Request) {
	var req setAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "value must be a string, an array of strings, an integer or null")
		return
	}
	if req.Value.Kind() == models.AnswerUnset {
		respondError(w, http.StatusBadRequest, "validation_error", "value is required, use DELETE to clear an answer")
		return
	}

	view, err := s.deps.Sessions.SetAnswer(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "questionID"), req.Value)
	s.respondStep(w, view, err)
}

func (s *Server) handleClearAnswer(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Sessions.ClearAnswer(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "questionID"))
	s.respondStep(w, view, err)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Sessions.Next(r.Context(), chi.URLParam(r, "id"))
	if err == nil && len(view.Errors) > 0 {
		respondFailure(w, http.StatusUnprocessableEntity, "validation_failed", "required questions are unanswered", view)
		return
	}
	s.respondStep(w, view, err)
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Sessions.Previous(r.Context(), chi.URLParam(r, "id"))
	s.respondStep(w, view, err)
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Sessions.Continue(r.Context(), chi.URLParam(r, "id"))
	s.respondStep(w, view, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	s.respondStep(w, view, err)
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Section == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "section is required")
		return
	}

	view, err := s.deps.Sessions.Jump(r.Context(), chi.URLParam(r, "id"), req.Section)
	s.respondStep(w, view, err)
}

func (s *Server) respondStep(w http.ResponseWriter, view *sessions.View, err error) {
	if err != nil {
		respondSessionError(w, view, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// respondSessionError maps session and navigator errors to HTTP responses.
// The view, when present, is returned so the client can re-render.
func respondSessionError(w http.ResponseWriter, view *sessions.View, err error) {
	var data interface{}
	if view != nil {
		data = view
	}

	switch {
	case errors.Is(err, sessions.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", "session not found or expired")
	case errors.Is(err, catalog.ErrUnknownLanguage):
		respondError(w, http.StatusBadRequest, "unknown_language", err.Error())
	case errors.Is(err, survey.ErrUnknownQuestion):
		respondFailure(w, http.StatusNotFound, "unknown_question", err.Error(), data)
	case errors.Is(err, survey.ErrUnknownSection):
		respondFailure(w, http.StatusNotFound, "unknown_section", err.Error(), data)
	case errors.Is(err, survey.ErrJumpNotAllowed):
		respondFailure(w, http.StatusForbidden, "jump_not_allowed", err.Error(), data)
	case errors.Is(err, survey.ErrAnswerMismatch):
		respondFailure(w, http.StatusBadRequest, "invalid_answer", err.Error(), data)
	case errors.Is(err, survey.ErrTooManySelections):
		respondFailure(w, http.StatusBadRequest, "too_many_selections", err.Error(), data)
	case errors.Is(err, survey.ErrNoPreviousPage):
		respondFailure(w, http.StatusConflict, "no_previous_page", err.Error(), data)
	case errors.Is(err, survey.ErrInvalidState):
		respondFailure(w, http.StatusConflict, "invalid_state", err.Error(), data)
	case errors.Is(err, survey.ErrLanguageMismatch):
		respondError(w, http.StatusConflict, "language_mismatch", err.Error())
	case errors.Is(err, survey.ErrSaveFailed):
		respondFailure(w, http.StatusInternalServerError, "save_failed", survey.ErrSaveFailed.Error(), data)
	default:
		slog.Error("session step failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
